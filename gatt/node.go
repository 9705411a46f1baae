package gatt

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NodeID is a stable index into a Tree's node arena: nodes live in a
// vector, not behind intrusive pointers.
type NodeID int

// InvalidNodeID never identifies a real node.
const InvalidNodeID NodeID = -1

// Node is one tree node at a given path. It owns an ordered set of
// Interface attachments (at most one per InterfaceKind) and an ordered
// set of children, keyed by their path segment.
type Node struct {
	id         NodeID
	parent     NodeID
	segment    string
	published  bool
	interfaces *orderedmap.OrderedMap[InterfaceKind, *Interface]
	children   *orderedmap.OrderedMap[string, NodeID]
}

func newNode(id, parent NodeID, segment string, published bool) *Node {
	return &Node{
		id:         id,
		parent:     parent,
		segment:    segment,
		published:  published,
		interfaces: orderedmap.New[InterfaceKind, *Interface](),
		children:   orderedmap.New[string, NodeID](),
	}
}

// ID returns the node's stable identifier.
func (n *Node) ID() NodeID { return n.id }

// Published reports whether this node contributes to
// GetManagedObjects.
func (n *Node) Published() bool { return n.published }

// Interfaces returns the node's attached interfaces in attachment
// order.
func (n *Node) Interfaces() []*Interface {
	out := make([]*Interface, 0, n.interfaces.Len())
	for pair := n.interfaces.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Interface returns the attached interface of the given kind, if any.
func (n *Node) Interface(kind InterfaceKind) (*Interface, bool) {
	return n.interfaces.Get(kind)
}
