package typestore

import (
	"errors"
	"fmt"

	"github.com/instrumentd/typestore/x/avltree"
)

// Store implements the attribute-store write path: resolve or auto-register
// the kind, gate on callback identity, then insert into the kind's tree.
func (r *registry) Store(kindName, valueName string, payload any, cbs *Callbacks) error {
	if kindName == "" || valueName == "" {
		return fmt.Errorf("store value %q under kind %q: empty name: %w",
			valueName, kindName, ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.findPosition(kindName)
	if pos < 0 {
		var err error
		pos, err = r.registerAt(decodeInsertion(pos), kindName, cbs)
		if err != nil {
			r.log.Error().Str("kind", kindName).Err(err).
				Msg("could not create new kind")
			r.countError(errorLabel(err))
			return err
		}
	}
	k := r.kinds[pos]

	if k.cbs != cbs {
		r.log.Error().Str("kind", kindName).Str("value", valueName).
			Msg("callbacks for value do not match kind")
		r.countError("callback_mismatch")
		return fmt.Errorf("store value %q under kind %q: %w",
			valueName, kindName, ErrCallbackMismatch)
	}

	if k.tree == nil {
		k.tree = avltree.New()
	}

	if err := k.tree.Insert(valueName, payload, k.freeFunc()); err != nil {
		if errors.Is(err, avltree.ErrDuplicateName) {
			// The tree rejected ownership; release the newcomer here so it
			// never ends up orphaned. The stored value stays intact.
			if cbs != nil && cbs.Free != nil {
				cbs.Free(payload)
			}
			r.countError("duplicate_value")
			return fmt.Errorf("store value %q under kind %q: %w",
				valueName, kindName, ErrDuplicateValue)
		}
		return fmt.Errorf("store value %q under kind %q: %w", valueName, kindName, err)
	}

	if r.metrics != nil {
		r.metrics.StoresTotal.Inc()
		r.metrics.ValuesStored.Inc()
	}
	return nil
}

func (r *registry) Get(kindName, valueName string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos := r.findPosition(kindName)
	if pos < 0 {
		r.countLookup("miss")
		return nil, false
	}
	payload, ok := r.kinds[pos].get(valueName)
	if ok {
		r.countLookup("hit")
	} else {
		r.countLookup("miss")
	}
	return payload, ok
}

func (r *registry) Parse(kindName string, fields []string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos := r.findPosition(kindName)
	if pos < 0 {
		r.countError("kind_not_found")
		return nil, fmt.Errorf("parse as kind %q: %w", kindName, ErrKindNotFound)
	}
	k := r.kinds[pos]
	if k.cbs == nil || k.cbs.Parse == nil {
		return nil, fmt.Errorf("parse as kind %q: no parse routine: %w",
			kindName, ErrInvalidArgument)
	}
	return k.cbs.Parse(fields)
}

func (r *registry) countLookup(result string) {
	if r.metrics != nil {
		r.metrics.LookupsTotal.WithLabelValues(result).Inc()
	}
}
