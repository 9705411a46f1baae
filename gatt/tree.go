package gatt

import (
	"fmt"
	"sync"

	"github.com/jy1655/BzPeri/bzpath"
)

// Tree is the in-memory, arena-backed GATT object model: nodes live in
// a slice keyed by stable NodeID, not behind intrusive pointers.
//
// Tree is mutable only while the application is being configured; once
// registration succeeds the owning server treats it as read-only and
// may share it by reference across goroutines.
type Tree struct {
	mu        sync.RWMutex
	nodes     []*Node
	byPath    map[bzpath.ObjectPath]NodeID
	rootPath  bzpath.ObjectPath
	rootID    NodeID
}

// NewTree creates a tree whose root lives at rootPath (typically the
// server's derived root path) and attaches the
// org.freedesktop.DBus.ObjectManager interface to it.
func NewTree(rootPath bzpath.ObjectPath) *Tree {
	t := &Tree{
		byPath: make(map[bzpath.ObjectPath]NodeID),
	}
	root := newNode(0, InvalidNodeID, "", false)
	t.nodes = append(t.nodes, root)
	t.rootID = 0
	t.rootPath = rootPath
	t.byPath[rootPath] = 0
	t.attachObjectManager(root)
	return t
}

// RootID returns the tree's root node id.
func (t *Tree) RootID() NodeID { return t.rootID }

// RootPath returns the tree's root object path.
func (t *Tree) RootPath() bzpath.ObjectPath { return t.rootPath }

// PathOf returns the absolute object path of the given node.
func (t *Tree) PathOf(id NodeID) (bzpath.ObjectPath, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pathOfLocked(id)
}

func (t *Tree) pathOfLocked(id NodeID) (bzpath.ObjectPath, error) {
	n, err := t.nodeLocked(id)
	if err != nil {
		return "", err
	}
	if id == t.rootID {
		return t.rootPath, nil
	}
	parentPath, err := t.pathOfLocked(n.parent)
	if err != nil {
		return "", err
	}
	return parentPath.Append(n.segment)
}

func (t *Tree) nodeLocked(id NodeID) (*Node, error) {
	if id < 0 || int(id) >= len(t.nodes) || t.nodes[id] == nil {
		return nil, fmt.Errorf("%w: node %d", ErrUnknownPath, id)
	}
	return t.nodes[id], nil
}

// Node returns the node for id.
func (t *Tree) Node(id NodeID) (*Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nodeLocked(id)
}

// NodeAt resolves an absolute object path to a node id.
func (t *Tree) NodeAt(path bzpath.ObjectPath) (NodeID, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byPath[path]
	if !ok {
		return InvalidNodeID, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	return id, nil
}

// AddChild appends a new, uniquely named child under parent and
// returns it. published controls whether the child contributes to
// GetManagedObjects (internal bookkeeping nodes pass false).
func (t *Tree) AddChild(parent NodeID, segment string, published bool) (NodeID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pnode, err := t.nodeLocked(parent)
	if err != nil {
		return InvalidNodeID, err
	}
	if _, exists := pnode.children.Get(segment); exists {
		return InvalidNodeID, fmt.Errorf("%w: %q under node %d", ErrDuplicatePath, segment, parent)
	}

	parentPath, err := t.pathOfLocked(parent)
	if err != nil {
		return InvalidNodeID, err
	}
	childPath, err := parentPath.Append(segment)
	if err != nil {
		return InvalidNodeID, err
	}

	id := NodeID(len(t.nodes))
	child := newNode(id, parent, segment, published)
	t.nodes = append(t.nodes, child)
	pnode.children.Set(segment, id)
	t.byPath[childPath] = id
	return id, nil
}

// AddInterface attaches iface to the node at id. A node may hold at
// most one interface of each InterfaceKind.
func (t *Tree) AddInterface(id NodeID, iface *Interface) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.nodeLocked(id)
	if err != nil {
		return err
	}
	if _, exists := n.interfaces.Get(iface.Kind); exists {
		return fmt.Errorf("%w: node %d already has %s", ErrDuplicateInterface, id, iface.Kind)
	}
	n.interfaces.Set(iface.Kind, iface)
	return nil
}

// FindInterface walks the tree for the interface named ifaceName at
// path.
func (t *Tree) FindInterface(path bzpath.ObjectPath, ifaceName string) (*Interface, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	id, ok := t.byPath[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	n := t.nodes[id]
	for _, iface := range n.Interfaces() {
		if iface.Name == ifaceName {
			return iface, nil
		}
	}
	return nil, fmt.Errorf("%w: %s on %s", ErrUnknownInterface, ifaceName, path)
}

// FindProperty walks the tree for propName on ifaceName at path.
func (t *Tree) FindProperty(path bzpath.ObjectPath, ifaceName, propName string) (*Property, error) {
	iface, err := t.FindInterface(path, ifaceName)
	if err != nil {
		return nil, err
	}
	prop, ok := iface.Property(propName)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s on %s", ErrUnknownProperty, ifaceName, propName, path)
	}
	return prop, nil
}

// CallMethod looks up methodName on ifaceName at path and invokes its
// handler. It returns true iff a handler was found and invoked; the
// handler itself is responsible for completing inv.
func (t *Tree) CallMethod(conn BusHandle, path bzpath.ObjectPath, ifaceName, methodName string, args []Value, inv Invocation) (bool, error) {
	iface, err := t.FindInterface(path, ifaceName)
	if err != nil {
		return false, err
	}
	m, ok := iface.Method(methodName)
	if !ok {
		return false, fmt.Errorf("%w: %s.%s on %s", ErrUnknownMethod, ifaceName, methodName, path)
	}
	m.Handler(conn, path, methodName, args, inv)
	return true, nil
}

// CallUpdatedValue looks up ifaceName at path and invokes its
// UpdatedValue hook, the entry point the update queue's dispatcher
// uses to turn a pushed characteristic/descriptor change into a
// PropertiesChanged emission. It is a no-op, not an error, when the
// interface never set a hook (e.g. a characteristic with no
// notify/indicate flags).
func (t *Tree) CallUpdatedValue(conn BusHandle, path bzpath.ObjectPath, ifaceName string) error {
	iface, err := t.FindInterface(path, ifaceName)
	if err != nil {
		return err
	}
	if iface.UpdatedValue == nil {
		return nil
	}
	return iface.UpdatedValue(conn)
}

// ManagedObjects is the return shape of GetManagedObjects: object path
// -> interface name -> property name -> value.
type ManagedObjects map[bzpath.ObjectPath]map[string]map[string]Value

// GetManagedObjects enumerates every published node in stable pre-order
// and returns its interfaces' current property values, resolving
// back-reference properties to fully-qualified paths (those are
// already stored as ObjectPath values by the interface constructors in
// this package, so no extra resolution step is needed here).
func (t *Tree) GetManagedObjects() ManagedObjects {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(ManagedObjects)
	t.walkPreOrderLocked(t.rootID, func(path bzpath.ObjectPath, n *Node) {
		if !n.published {
			return
		}
		ifaces := n.Interfaces()
		if len(ifaces) == 0 {
			return
		}
		perIface := make(map[string]map[string]Value, len(ifaces))
		for _, iface := range ifaces {
			perIface[iface.Name] = iface.snapshotProperties()
		}
		out[path] = perIface
	})
	return out
}

// Walk visits every node in the tree, published or not, in stable
// pre-order. Used by dbusx to export D-Bus objects for bookkeeping
// nodes too (e.g. the advertisement object, which is never a
// GetManagedObjects entry).
func (t *Tree) Walk(visit func(bzpath.ObjectPath, *Node)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.walkPreOrderLocked(t.rootID, visit)
}

func (t *Tree) walkPreOrderLocked(id NodeID, visit func(bzpath.ObjectPath, *Node)) {
	n := t.nodes[id]
	path, err := t.pathOfLocked(id)
	if err != nil {
		return
	}
	visit(path, n)
	for pair := n.children.Oldest(); pair != nil; pair = pair.Next() {
		t.walkPreOrderLocked(pair.Value, visit)
	}
}

func (t *Tree) attachObjectManager(root *Node) {
	iface := newInterface(KindObjectManager)
	iface.addMethod(&Method{
		Name:         "GetManagedObjects",
		OutSignature: "a{oa{sa{sv}}}",
		Handler: func(conn BusHandle, path bzpath.ObjectPath, method string, args []Value, inv Invocation) {
			objects := t.GetManagedObjects()
			dict := make(map[string]Value, len(objects))
			for p, ifaces := range objects {
				ifaceDict := make(map[string]Value, len(ifaces))
				for ifaceName, props := range ifaces {
					propDict := make(map[string]Value, len(props))
					for k, v := range props {
						propDict[k] = Variant(v)
					}
					ifaceDict[ifaceName] = Dict(propDict)
				}
				dict[string(p)] = Dict(ifaceDict)
			}
			inv.Return(Dict(dict))
		},
	})
	root.interfaces.Set(KindObjectManager, iface)
}
