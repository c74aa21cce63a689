// Package prop is a small custom-property registry: named values
// attached to a model, built once on first obtain, reference counted,
// and dropped when the last holder detaches. Dropping the slot is
// what releases everything the property cached for the model, so
// teardown is explicit rather than left to the garbage collector.
package prop

import (
	"context"
	"errors"
	"sync"

	"github.com/mvskit/annot/model"
)

// Descriptor names a property. Two descriptors with the same name are
// the same property.
type Descriptor struct {
	Name string
}

// ObtainFunc builds a property value for a model. It may return both
// a usable value and an error (a partially loaded value); both are
// remembered.
type ObtainFunc func(ctx context.Context, m *model.Model) (any, error)

type slotKey struct {
	desc    string
	modelID string
}

type slot struct {
	done  chan struct{}
	value any
	err   error
	refs  int
}

// Registry holds the attached properties. The zero value is not
// usable; call NewRegistry.
type Registry struct {
	mu    sync.Mutex
	slots map[slotKey]*slot
}

func NewRegistry() *Registry {
	return &Registry{slots: make(map[slotKey]*slot)}
}

// Obtain returns the property value for a model, building it with
// build if this is the first request, and takes one reference. Every
// concurrent obtainer of the same slot waits for the one build.
// A build error propagates to every obtainer.
func (r *Registry) Obtain(ctx context.Context, desc Descriptor, m *model.Model, build ObtainFunc) (any, error) {
	key := slotKey{desc: desc.Name, modelID: m.ID()}
	r.mu.Lock()
	if s, ok := r.slots[key]; ok {
		s.refs++
		r.mu.Unlock()
		<-s.done
		return s.value, s.err
	}
	s := &slot{done: make(chan struct{}), refs: 1}
	r.slots[key] = s
	r.mu.Unlock()

	s.value, s.err = build(ctx, m)
	close(s.done)
	return s.value, s.err
}

// Get returns the value without taking a reference, and false if the
// property was never obtained or is still building.
func (r *Registry) Get(desc Descriptor, m *model.Model) (any, bool) {
	r.mu.Lock()
	s, ok := r.slots[slotKey{desc: desc.Name, modelID: m.ID()}]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-s.done:
		return s.value, s.err == nil || s.value != nil
	default:
		return nil, false
	}
}

// Attach takes another reference on an existing slot. It returns an
// error for a slot that does not exist; callers obtain first.
func (r *Registry) Attach(desc Descriptor, m *model.Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotKey{desc: desc.Name, modelID: m.ID()}]
	if !ok {
		return errors.New("prop: attach of property never obtained: " + desc.Name)
	}
	s.refs++
	return nil
}

// Detach drops one reference. When the last holder detaches, the slot
// and everything its value cached go with it.
func (r *Registry) Detach(desc Descriptor, m *model.Model) {
	key := slotKey{desc: desc.Name, modelID: m.ID()}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[key]
	if !ok {
		return
	}
	s.refs--
	if s.refs <= 0 {
		delete(r.slots, key)
	}
}
