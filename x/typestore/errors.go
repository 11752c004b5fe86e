package typestore

import "errors"

var (
	// ErrDuplicateKind indicates a registration under a name already present.
	ErrDuplicateKind = errors.New("typestore: duplicate kind")

	// ErrKindNotFound indicates an operation referencing an absent kind name.
	ErrKindNotFound = errors.New("typestore: kind not found")

	// ErrCallbackMismatch indicates a store whose callback handle disagrees
	// with the kind's established handle.
	ErrCallbackMismatch = errors.New("typestore: callback set does not match existing kind")

	// ErrDuplicateValue indicates a store under a value name already present
	// within the target kind.
	ErrDuplicateValue = errors.New("typestore: duplicate value name")

	// ErrInvalidArgument indicates an empty name or an out-of-range position
	// where one is structurally required.
	ErrInvalidArgument = errors.New("typestore: invalid argument")
)
