package stockpile

import (
	"github.com/TheBitDrifter/mask"
)

type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

type compositeNode struct {
	op         Operation
	children   []QueryNode
	components []Component
}

type leafNode struct {
	components []Component
}

type query struct {
	root QueryNode
}

func newQuery() Query {
	return &query{}
}

func newCompositeNode(op Operation, components []Component) *compositeNode {
	return &compositeNode{
		op:         op,
		children:   make([]QueryNode, 0),
		components: components,
	}
}

func newLeafNode(components []Component) *leafNode {
	return &leafNode{components: components}
}

// nodeMask returns the bits of the registered components among components,
// and whether all of them were registered. An unregistered component has no
// pool, so no entity carries it.
func nodeMask(components []Component, storage Storage) (mask.Mask, bool) {
	var m mask.Mask
	all := true
	for _, comp := range components {
		if !storage.Registered(comp) {
			all = false
			continue
		}
		m.Mark(storage.RowIndexFor(comp))
	}
	return m, all
}

func (n *compositeNode) Evaluate(signature mask.Mask, storage Storage) bool {
	required, all := nodeMask(n.components, storage)

	switch n.op {
	case OpAnd:
		if !all || !signature.ContainsAll(required) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(signature, storage) {
				return false
			}
		}
		return true

	case OpOr:
		if signature.ContainsAny(required) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(signature, storage) {
				return true
			}
		}
		return false

	case OpNot:
		for _, child := range n.children {
			if child.Evaluate(signature, storage) {
				return false
			}
		}
		return !signature.ContainsAny(required)
	}
	return false
}

// required lists components every match must have. Only And nodes narrow the
// candidates; cursors use it to pick the smallest pool to walk.
func (n *compositeNode) required() []Component {
	if n.op != OpAnd {
		return nil
	}
	out := append([]Component(nil), n.components...)
	for _, child := range n.children {
		if r, ok := child.(interface{ required() []Component }); ok {
			out = append(out, r.required()...)
		}
	}
	return out
}

func (n *leafNode) Evaluate(signature mask.Mask, storage Storage) bool {
	required, all := nodeMask(n.components, storage)
	return all && signature.ContainsAll(required)
}

func (n *leafNode) required() []Component {
	return n.components
}

func (q *query) And(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpAnd, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Or(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpOr, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Not(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpNot, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

// With is the leaf form: entities having all of components.
func With(components ...Component) QueryNode {
	return newLeafNode(components)
}

func (q *query) processItems(items ...interface{}) ([]Component, []QueryNode) {
	components := make([]Component, 0)
	children := make([]QueryNode, 0)

	for _, item := range items {
		switch v := item.(type) {
		case Component:
			components = append(components, v)
		case []Component:
			components = append(components, v...)
		case QueryNode:
			children = append(children, v)
		}
	}

	return components, children
}

func (q *query) Evaluate(signature mask.Mask, storage Storage) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(signature, storage)
}

func (q *query) required() []Component {
	if r, ok := q.root.(interface{ required() []Component }); ok {
		return r.required()
	}
	return nil
}
