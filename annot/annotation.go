// Annotation owns one parsed data source plus its per-model cache of
// atom to row mappings. The cache entry for a model is immutable once
// built and lives until the annotation is dropped; models are
// immutable for their lifetime, so nothing ever invalidates it.
package annot

import (
	"fmt"
	"sync"

	"github.com/mvskit/annot/model"
)

// Annotation is a schema-typed table of rows with a lazily built
// per-model resolution cache.
type Annotation struct {
	id     string
	schema Schema
	src    Source
	sels   []Selector

	mu      sync.Mutex
	cache   map[string][]int32 // model identity -> winning row per atom
	indexes map[string]*model.Index
	indexFn func(*model.Model) *model.Index
	warned  map[int]bool // rows already complained about
}

// NewAnnotation builds an annotation over a parsed source. Selector
// fields are extracted eagerly, so a malformed selector value fails
// here, at load time, not during rendering.
func NewAnnotation(id string, schema Schema, src Source) (*Annotation, error) {
	a := &Annotation{
		id:     id,
		schema: schema,
		src:    src,
		cache:  make(map[string][]int32),
		warned: make(map[int]bool),
	}
	n := src.RowCount()
	a.sels = make([]Selector, n)
	for i := 0; i < n; i++ {
		sel, err := selectorFromRow(src, i, schema)
		if err != nil {
			return nil, fmt.Errorf("annotation %q: %w", id, err)
		}
		a.sels[i] = sel
	}
	return a, nil
}

func (a *Annotation) ID() string     { return a.id }
func (a *Annotation) Schema() Schema { return a.schema }
func (a *Annotation) RowCount() int  { return len(a.sels) }

// index returns the structural index for a model, sharing the owning
// collection's cache when the annotation belongs to one.
func (a *Annotation) index(m *model.Model) *model.Index {
	if a.indexFn != nil {
		return a.indexFn(m)
	}
	if a.indexes == nil {
		a.indexes = make(map[string]*model.Index)
	}
	ix, ok := a.indexes[m.ID()]
	if !ok {
		ix = model.NewIndex(m)
		a.indexes[m.ID()] = ix
	}
	return ix
}

// ResolveRows returns the winning-row array for a model, one entry
// per atom, NoRow where nothing matched. Repeated calls for the same
// model return the identical cached slice; callers must not write to
// it.
func (a *Annotation) ResolveRows(m *model.Model) []int32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if rows, ok := a.cache[m.ID()]; ok {
		return rows
	}
	rows := resolveRows(a.index(m), a.schema, a.sels, func(row int, err error) {
		if !a.warned[row] {
			a.warned[row] = true
			diagf("annotation %q row %d: %v", a.id, row, err)
		}
	})
	a.cache[m.ID()] = rows
	return rows
}

// ValueAt returns a field's string value at a row, with ok=false for
// NoRow, an out of range row, or an absent value.
func (a *Annotation) ValueAt(row int32, field string) (string, bool) {
	if row < 0 || int(row) >= a.src.RowCount() {
		return "", false
	}
	return a.src.Value(int(row), field)
}

// ValueForLocation is the per-atom query coloring, labeling and
// tooltip consumers sit on.
func (a *Annotation) ValueForLocation(loc model.Location, field string) (string, bool) {
	if loc.Model == nil || loc.Atom < 0 || loc.Atom >= loc.Model.AtomCount() {
		return "", false
	}
	rows := a.ResolveRows(loc.Model)
	return a.ValueAt(rows[loc.Atom], field)
}

// Annotations is the collection a model's custom-property slot owns:
// an immutable mapping from user-supplied ids to annotations, plus a
// structural-index cache its members share.
type Annotations struct {
	byID  map[string]*Annotation
	order []string

	mu      sync.Mutex
	indexes map[string]*model.Index
}

// NewAnnotations builds the collection and wires each member to the
// shared index cache.
func NewAnnotations(anns []*Annotation) *Annotations {
	as := &Annotations{
		byID:    make(map[string]*Annotation, len(anns)),
		indexes: make(map[string]*model.Index),
	}
	for _, a := range anns {
		if _, dup := as.byID[a.id]; dup {
			continue // loader rejects duplicates before we get here
		}
		as.byID[a.id] = a
		as.order = append(as.order, a.id)
		a.indexFn = as.index
	}
	return as
}

func (as *Annotations) index(m *model.Model) *model.Index {
	as.mu.Lock()
	defer as.mu.Unlock()
	ix, ok := as.indexes[m.ID()]
	if !ok {
		ix = model.NewIndex(m)
		as.indexes[m.ID()] = ix
	}
	return ix
}

// Annotation finds a member by id, nil when the id was never loaded.
func (as *Annotations) Annotation(id string) *Annotation { return as.byID[id] }

// All returns the members in load order.
func (as *Annotations) All() []*Annotation {
	out := make([]*Annotation, len(as.order))
	for i, id := range as.order {
		out[i] = as.byID[id]
	}
	return out
}
