// Binding a loaded Annotations collection to a model through the
// custom-property registry. The collection lives exactly as long as
// the property slot: the last detach drops it and with it every
// cached row-resolution array.
package annot

import (
	"context"

	"github.com/mvskit/annot/asset"
	"github.com/mvskit/annot/model"
	"github.com/mvskit/annot/prop"
)

// Property is the descriptor a model's annotations live under.
var Property = prop.Descriptor{Name: "annotations"}

// Attach loads the specs and attaches the collection to the model.
// Subsequent Attach calls for the same model share the already built
// collection without refetching. Ids that failed to load are reported
// through the returned error; the collection still carries the rest.
func Attach(ctx context.Context, reg *prop.Registry, res asset.Resolver,
	m *model.Model, specs []Spec) (*Annotations, error) {
	v, err := reg.Obtain(ctx, Property, m, func(ctx context.Context, m *model.Model) (any, error) {
		return LoadAnnotations(ctx, res, specs)
	})
	as, _ := v.(*Annotations)
	return as, err
}

// FromModel fetches the attached collection without affecting its
// reference count.
func FromModel(reg *prop.Registry, m *model.Model) (*Annotations, bool) {
	v, ok := reg.Get(Property, m)
	if !ok {
		return nil, false
	}
	as, ok := v.(*Annotations)
	return as, ok
}

// Detach drops one reference on the model's annotations.
func Detach(reg *prop.Registry, m *model.Model) {
	reg.Detach(Property, m)
}
