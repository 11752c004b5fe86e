package typestore

import "io"

// TypeStore is the registry of named kinds and their typed attribute values,
// shared by every protocol-handling context of one dispatch instance.
//
// All operations are synchronous and serialized behind one lock; positions
// returned by FindPosition or RegisterAt are only stable until the next
// mutation. Lookups return borrowed views: payloads stay owned by the store
// until released through the kind's free routine.
type TypeStore interface {
	// FindPosition binary-searches the sorted kind sequence. A match returns
	// the zero-based index of the kind. A miss returns -(insertionIndex+1),
	// the encoded position at which name would keep the sequence sorted.
	FindPosition(name string) int

	// RegisterAt inserts a new kind at the given ordinal position, shifting
	// later kinds one slot. Callers are expected to have computed the
	// position from a failed FindPosition; the sort invariant is theirs to
	// keep. Returns the final position.
	RegisterAt(pos int, name string, cbs *Callbacks) (int, error)

	// Register adds a kind under name at its sorted position. Fails with
	// ErrDuplicateKind, mutating nothing, if the name is taken.
	Register(name string, cbs *Callbacks) (int, error)

	// Deregister removes a kind, releasing every stored payload through the
	// kind's free routine. O(n) in the number of kinds.
	Deregister(name string) error

	// Store attaches a named payload under a kind, registering the kind with
	// cbs if absent. Ownership of payload transfers to the store; on a
	// duplicate value name the rejected payload is released exactly once via
	// the supplied free routine and ErrDuplicateValue is returned.
	Store(kindName, valueName string, payload any, cbs *Callbacks) error

	// Get returns a borrowed view of a stored payload. A missing kind and a
	// missing value name are not distinguished; use LookupKind when the
	// distinction matters.
	Get(kindName, valueName string) (any, bool)

	// Parse decodes textual fields into a payload through the kind's parse
	// routine. The caller owns the result; it is not stored.
	Parse(kindName string, fields []string) (any, error)

	// LookupKind resolves a kind by name.
	LookupKind(name string) (*Kind, bool)

	// KindAt resolves a kind by ordinal position.
	KindAt(pos int) (*Kind, bool)

	// Len returns the number of registered kinds.
	Len() int

	// ForEachKind visits every kind in sorted-name order. The visitor must
	// not mutate the store.
	ForEachKind(visit func(*Kind))

	// Fprint renders every kind and its values in deterministic order using
	// each kind's print routine, or a default rendering when it has none.
	Fprint(w io.Writer)

	// Destroy releases every payload and kind and resets the store to empty.
	// Calling it on an empty store is a no-op.
	Destroy()
}
