package typestore

import (
	"fmt"
	"io"

	"github.com/instrumentd/typestore/x/avltree"
)

// PrintFunc renders a payload for diagnostics.
type PrintFunc func(w io.Writer, payload any)

// FreeFunc releases a payload once the store gives up ownership of it.
type FreeFunc func(payload any)

// CopyFunc produces an independent copy of a payload.
type CopyFunc func(payload any) (any, error)

// CompareFunc orders two payloads of the same kind; negative, zero or
// positive like strings.Compare.
type CompareFunc func(a, b any) int

// ParseFunc decodes a payload from its textual field representation.
type ParseFunc func(fields []string) (any, error)

// Callbacks is the behavior set of a kind. Every slot is optional; a kind
// with a nil Free never releases its payloads (the caller keeps that
// responsibility).
//
// The *Callbacks handle is the kind's behavior identity: once a kind is
// registered with a handle, every later store under that kind name must
// present the same handle or fail with ErrCallbackMismatch. Declare one
// Callbacks value per kind and share it.
type Callbacks struct {
	Print   PrintFunc
	Free    FreeFunc
	Copy    CopyFunc
	Compare CompareFunc
	Parse   ParseFunc
}

// Kind is one registered category of data: an immutable name, a behavior
// handle fixed at registration, and a lazily created value tree.
type Kind struct {
	name string
	cbs  *Callbacks
	tree *avltree.Tree
}

// Name returns the kind's registered name.
func (k *Kind) Name() string { return k.name }

// Callbacks returns the behavior handle the kind was registered with. May be
// nil for a kind registered without behaviors.
func (k *Kind) Callbacks() *Callbacks { return k.cbs }

// Len returns the number of values stored under the kind.
func (k *Kind) Len() int {
	if k.tree == nil {
		return 0
	}
	return k.tree.Len()
}

// Walk visits the kind's values in ascending name order.
func (k *Kind) Walk(visit func(name string, payload any)) {
	if k.tree == nil {
		return
	}
	k.tree.Walk(visit)
}

func (k *Kind) get(valueName string) (any, bool) {
	if k.tree == nil {
		return nil, false
	}
	return k.tree.Lookup(valueName)
}

// freeFunc adapts the kind's free slot for the value tree; nil when the kind
// declares no release routine.
func (k *Kind) freeFunc() avltree.FreeFunc {
	if k.cbs == nil || k.cbs.Free == nil {
		return nil
	}
	return avltree.FreeFunc(k.cbs.Free)
}

// Render writes one value through the kind's print routine, falling back to
// a plain %v rendering.
func (k *Kind) Render(w io.Writer, payload any) {
	if k.cbs != nil && k.cbs.Print != nil {
		k.cbs.Print(w, payload)
		return
	}
	fmt.Fprintf(w, "%v", payload)
}

// destroy releases the kind's values and detaches its tree.
func (k *Kind) destroy() {
	if k.tree != nil {
		k.tree.Destroy()
		k.tree = nil
	}
}
