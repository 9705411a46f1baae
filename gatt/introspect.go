package gatt

import (
	"github.com/godbus/dbus/v5/introspect"
	"github.com/jy1655/BzPeri/bzpath"
)

// IntrospectXML renders the introspection XML document for the node at
// path, including its immediate children's relative names but not
// their interfaces (callers introspect one level at a time, as BlueZ
// itself does when walking the tree).
func (t *Tree) IntrospectXML(path bzpath.ObjectPath) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	id, ok := t.byPath[path]
	if !ok {
		return "", ErrUnknownPath
	}
	n := t.nodes[id]

	node := &introspect.Node{
		Name:       string(path),
		Interfaces: []introspect.Interface{introspect.IntrospectData},
	}
	for _, iface := range n.Interfaces() {
		node.Interfaces = append(node.Interfaces, toIntrospectInterface(iface))
	}
	for pair := n.children.Oldest(); pair != nil; pair = pair.Next() {
		node.Children = append(node.Children, introspect.Node{Name: pair.Key})
	}
	return string(introspect.NewIntrospectable(node)), nil
}

func toIntrospectInterface(iface *Interface) introspect.Interface {
	out := introspect.Interface{Name: iface.Name}
	for pair := iface.Methods.Oldest(); pair != nil; pair = pair.Next() {
		out.Methods = append(out.Methods, toIntrospectMethod(pair.Value))
	}
	for pair := iface.Properties.Oldest(); pair != nil; pair = pair.Next() {
		out.Properties = append(out.Properties, toIntrospectProperty(pair.Value))
	}
	for pair := iface.Signals.Oldest(); pair != nil; pair = pair.Next() {
		out.Signals = append(out.Signals, toIntrospectSignal(pair.Value))
	}
	return out
}

func toIntrospectMethod(m *Method) introspect.Method {
	out := introspect.Method{Name: m.Name}
	for _, sig := range m.InSignature {
		out.Args = append(out.Args, introspect.Arg{Type: sig, Direction: "in"})
	}
	if m.OutSignature != "" {
		out.Args = append(out.Args, introspect.Arg{Type: m.OutSignature, Direction: "out"})
	}
	return out
}

func toIntrospectProperty(p *Property) introspect.Property {
	access := ""
	switch {
	case p.Flags.Read && p.Flags.Write:
		access = "readwrite"
	case p.Flags.Write:
		access = "write"
	default:
		access = "read"
	}
	return introspect.Property{Name: p.Name, Type: p.Signature, Access: access}
}

func toIntrospectSignal(s *Signal) introspect.Signal {
	out := introspect.Signal{Name: s.Name}
	for _, sig := range s.Signature {
		out.Args = append(out.Args, introspect.Arg{Type: sig})
	}
	return out
}
