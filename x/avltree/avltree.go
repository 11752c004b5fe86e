// Package avltree implements a height-balanced binary search tree keyed by
// string name. Each node owns one opaque payload together with the release
// routine supplied at insertion time; Destroy releases every payload through
// its captured routine. Duplicate names are rejected on insert, never
// silently overwritten.
package avltree

import (
	"errors"
	"strings"
)

// ErrDuplicateName indicates an insert under a name already present in the tree.
var ErrDuplicateName = errors.New("avltree: duplicate name")

// FreeFunc releases a payload once the tree gives up ownership of it.
type FreeFunc func(payload any)

type node struct {
	name    string
	payload any
	free    FreeFunc

	left, right *node
	height      int
}

// Tree is a self-balancing binary search tree. It is not safe for concurrent
// use; callers serialize access (the type registry holds its own lock).
type Tree struct {
	root *node
	size int
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{}
}

// Len returns the number of values held by the tree.
func (t *Tree) Len() int {
	return t.size
}

func height(n *node) int {
	if n == nil {
		return 0
	}
	return n.height
}

func balance(n *node) int {
	if n == nil {
		return 0
	}
	return height(n.left) - height(n.right)
}

func (n *node) fix() *node {
	n.height = 1 + max(height(n.left), height(n.right))
	return n
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y.fix()
	return x.fix()
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x.fix()
	return y.fix()
}

// rebalance restores the AVL bound after an insertion below n.
func rebalance(n *node) *node {
	n.fix()
	switch b := balance(n); {
	case b > 1:
		if balance(n.left) < 0 {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	case b < -1:
		if balance(n.right) > 0 {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}
	return n
}

// Insert adds a payload under name. The free routine, which may be nil, is
// captured with the node and invoked when the tree releases the payload.
// Returns ErrDuplicateName without taking ownership if name is already
// present.
func (t *Tree) Insert(name string, payload any, free FreeFunc) error {
	root, err := insert(t.root, name, payload, free)
	if err != nil {
		return err
	}
	t.root = root
	t.size++
	return nil
}

func insert(n *node, name string, payload any, free FreeFunc) (*node, error) {
	if n == nil {
		return &node{name: name, payload: payload, free: free, height: 1}, nil
	}
	switch cmp := strings.Compare(name, n.name); {
	case cmp == 0:
		return nil, ErrDuplicateName
	case cmp < 0:
		child, err := insert(n.left, name, payload, free)
		if err != nil {
			return nil, err
		}
		n.left = child
	default:
		child, err := insert(n.right, name, payload, free)
		if err != nil {
			return nil, err
		}
		n.right = child
	}
	return rebalance(n), nil
}

// Lookup returns the payload stored under name. The payload remains owned by
// the tree; callers must not retain it past the next mutation.
func (t *Tree) Lookup(name string) (any, bool) {
	n := t.root
	for n != nil {
		switch cmp := strings.Compare(name, n.name); {
		case cmp == 0:
			return n.payload, true
		case cmp < 0:
			n = n.left
		default:
			n = n.right
		}
	}
	return nil, false
}

// Walk visits every value in ascending name order. The tree must not be
// mutated during the walk.
func (t *Tree) Walk(visit func(name string, payload any)) {
	walk(t.root, visit)
}

func walk(n *node, visit func(name string, payload any)) {
	if n == nil {
		return
	}
	walk(n.left, visit)
	visit(n.name, n.payload)
	walk(n.right, visit)
}

// Destroy releases every payload through its captured free routine and
// resets the tree to empty. Payloads whose free routine is nil are dropped
// without release. Safe to call on an empty tree.
func (t *Tree) Destroy() {
	destroy(t.root)
	t.root = nil
	t.size = 0
}

func destroy(n *node) {
	if n == nil {
		return
	}
	destroy(n.left)
	destroy(n.right)
	if n.free != nil {
		n.free(n.payload)
	}
	n.left, n.right, n.payload = nil, nil, nil
}
