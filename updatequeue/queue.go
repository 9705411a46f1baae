// Package updatequeue buffers characteristic/descriptor value updates
// produced by application code and drains them onto the D-Bus
// connection at a fixed cadence, keeping update producers
// (potentially many goroutines) decoupled from the single-writer
// D-Bus connection.
package updatequeue

import (
	"container/list"
	"sync"

	"github.com/jy1655/BzPeri/bzpath"
)

// Entry names one property on one object that needs its current value
// pushed to the bus.
type Entry struct {
	Path      bzpath.ObjectPath
	Interface string
	Property  string
	UserData  interface{}
}

// Queue is an unbounded, thread-safe FIFO of Entry values. Grounded on
// the teacher's producer/consumer channel idiom
// (bleadapter/bleadapter.go's handleDeviceSignal select loop), rebuilt
// around container/list because PushFront must always succeed with no
// upper bound — a fixed-capacity ring buffer (the corpus's
// hedzr/go-ringbuf, smallnest/ringbuffer) would have to drop entries
// under load instead.
type Queue struct {
	mu   sync.Mutex
	list list.List
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{}
}

// PushFront enqueues e. It never blocks and never fails.
func (q *Queue) PushFront(e Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.PushFront(e)
}

// PopBack removes and returns the oldest entry, and false if the
// queue is empty.
func (q *Queue) PopBack() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	back := q.list.Back()
	if back == nil {
		return Entry{}, false
	}
	q.list.Remove(back)
	return back.Value.(Entry), true
}

// IsEmpty reports whether the queue currently holds no entries.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.Len() == 0
}

// Size returns the current entry count.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.Len()
}

// Clear removes every entry.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.Init()
}
