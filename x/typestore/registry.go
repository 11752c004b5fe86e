// Package typestore implements the runtime type registry and typed attribute
// store shared by the protocol engine's dispatch contexts: a name-sorted
// sequence of kinds, each owning a balanced tree of named opaque values with
// caller-supplied lifecycle behaviors.
package typestore

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config captures the collaborators a type store is built with.
type Config struct {
	// Logger is the diagnostic sink for structural failures. Defaults to a
	// no-op logger.
	Logger zerolog.Logger

	// Metrics instruments the store when non-nil.
	Metrics *Metrics
}

func (cfg *Config) apply() error {
	if cfg.Logger.GetLevel() == zerolog.NoLevel {
		cfg.Logger = zerolog.Nop()
	}
	return nil
}

type registry struct {
	mu      sync.RWMutex
	log     zerolog.Logger
	metrics *Metrics

	// kinds stays strictly sorted by name at all times; every lookup and
	// mutation below relies on it.
	kinds []*Kind
}

// New creates an empty type store bound to its own dispatch context.
// Independent instances never share state, so tests and embedded engines can
// hold several side by side.
func New(cfg Config) (TypeStore, error) {
	if err := cfg.apply(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	return &registry{
		log: cfg.Logger.With().
			Str("component", "typestore").
			Str("store_id", id).
			Logger(),
		metrics: cfg.Metrics,
	}, nil
}

func (r *registry) FindPosition(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findPosition(name)
}

// findPosition implements the encoded binary search: index on a match,
// -(insertionIndex+1) on a miss. An empty sequence and an
// insert-before-first miss both encode to -1; callers never need to tell
// them apart.
func (r *registry) findPosition(name string) int {
	low, high := 0, len(r.kinds)-1
	for low <= high {
		mid := low + (high-low)/2
		switch cmp := strings.Compare(name, r.kinds[mid].name); {
		case cmp == 0:
			return mid
		case cmp < 0:
			high = mid - 1
		default:
			low = mid + 1
		}
	}
	return -(low + 1)
}

func (r *registry) RegisterAt(pos int, name string, cbs *Callbacks) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerAt(pos, name, cbs)
}

func (r *registry) registerAt(pos int, name string, cbs *Callbacks) (int, error) {
	if name == "" {
		return -1, fmt.Errorf("register kind: empty name: %w", ErrInvalidArgument)
	}
	if pos < 0 || pos > len(r.kinds) {
		return -1, fmt.Errorf("register kind %q at position %d of %d: %w",
			name, pos, len(r.kinds), ErrInvalidArgument)
	}

	k := &Kind{name: name, cbs: cbs}
	r.kinds = append(r.kinds, nil)
	copy(r.kinds[pos+1:], r.kinds[pos:])
	r.kinds[pos] = k

	if r.metrics != nil {
		r.metrics.KindsRegistered.Set(float64(len(r.kinds)))
	}
	r.log.Debug().Str("kind", name).Int("position", pos).Msg("registered kind")
	return pos, nil
}

func (r *registry) Register(name string, cbs *Callbacks) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.findPosition(name)
	if pos >= 0 {
		r.countError("duplicate_kind")
		return -1, fmt.Errorf("register kind %q: %w", name, ErrDuplicateKind)
	}
	return r.registerAt(decodeInsertion(pos), name, cbs)
}

// decodeInsertion turns a miss encoding from findPosition back into the
// insertion index.
func decodeInsertion(pos int) int {
	return -(pos + 1)
}

func (r *registry) Deregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.findPosition(name)
	if pos < 0 {
		r.countError("kind_not_found")
		return fmt.Errorf("deregister kind %q: %w", name, ErrKindNotFound)
	}

	k := r.kinds[pos]
	released := k.Len()
	k.destroy()

	copy(r.kinds[pos:], r.kinds[pos+1:])
	r.kinds[len(r.kinds)-1] = nil
	r.kinds = r.kinds[:len(r.kinds)-1]

	if r.metrics != nil {
		r.metrics.KindsRegistered.Set(float64(len(r.kinds)))
		r.metrics.ValuesStored.Sub(float64(released))
		r.metrics.ValuesPerKind.Observe(float64(released))
	}
	r.log.Debug().Str("kind", name).Int("released", released).Msg("deregistered kind")
	return nil
}

func (r *registry) LookupKind(name string) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos := r.findPosition(name)
	if pos < 0 {
		return nil, false
	}
	return r.kinds[pos], true
}

func (r *registry) KindAt(pos int) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if pos < 0 || pos >= len(r.kinds) {
		return nil, false
	}
	return r.kinds[pos], true
}

func (r *registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.kinds)
}

func (r *registry) ForEachKind(visit func(*Kind)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, k := range r.kinds {
		visit(k)
	}
}

func (r *registry) Fprint(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, k := range r.kinds {
		fmt.Fprintf(w, "kind %s (%d values)\n", k.name, k.Len())
		k.Walk(func(name string, payload any) {
			fmt.Fprintf(w, "  %s: ", name)
			k.Render(w, payload)
			fmt.Fprintln(w)
		})
	}
}

func (r *registry) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.kinds) == 0 {
		return
	}
	for _, k := range r.kinds {
		k.destroy()
	}
	r.kinds = nil

	if r.metrics != nil {
		r.metrics.KindsRegistered.Set(0)
		r.metrics.ValuesStored.Set(0)
	}
	r.log.Debug().Msg("destroyed type store")
}

func (r *registry) countError(kind string) {
	if r.metrics != nil {
		r.metrics.ErrorsTotal.WithLabelValues(kind).Inc()
	}
}

// errorLabel maps taxonomy sentinels onto metric labels.
func errorLabel(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateKind):
		return "duplicate_kind"
	case errors.Is(err, ErrKindNotFound):
		return "kind_not_found"
	case errors.Is(err, ErrCallbackMismatch):
		return "callback_mismatch"
	case errors.Is(err, ErrDuplicateValue):
		return "duplicate_value"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "internal"
	}
}
