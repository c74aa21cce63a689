// The render-time consumers. These are queried per atom and must
// never fail a frame: a missing annotation id, a missing field or an
// unmatched atom degrade to the background value, with one diagnostic
// the first time so the console says why the structure is grey.
package annot

import (
	"sync"

	"github.com/mvskit/annot/model"
)

// ColorTheme colors atoms from an annotation field.
type ColorTheme struct {
	ann        *Annotation
	id         string
	field      string
	background string
	warn       sync.Once
}

// NewColorTheme builds a theme over a loaded collection. The field
// defaults to "color". A nil collection or an unknown id gives a
// theme that always answers the background color.
func NewColorTheme(as *Annotations, id, field, background string) *ColorTheme {
	t := &ColorTheme{id: id, field: field, background: background}
	if t.field == "" {
		t.field = "color"
	}
	if as != nil {
		t.ann = as.Annotation(id)
	}
	return t
}

// Color answers the color for one atom.
func (t *ColorTheme) Color(loc model.Location) string {
	if t.ann == nil {
		t.warn.Do(func() {
			diagf("color theme: annotation %q not loaded, using background", t.id)
		})
		return t.background
	}
	v, ok := t.ann.ValueForLocation(loc, t.field)
	if !ok {
		return t.background
	}
	return v
}

// LabelProvider yields per-atom label text from an annotation field
// (by default "label"). TooltipProvider is the same thing over
// "tooltip"; both are thin and share this type.
type LabelProvider struct {
	ann   *Annotation
	field string
}

func NewLabelProvider(as *Annotations, id, field string) *LabelProvider {
	p := &LabelProvider{field: field}
	if p.field == "" {
		p.field = "label"
	}
	if as != nil {
		p.ann = as.Annotation(id)
	}
	return p
}

func NewTooltipProvider(as *Annotations, id string) *LabelProvider {
	p := &LabelProvider{field: "tooltip"}
	if as != nil {
		p.ann = as.Annotation(id)
	}
	return p
}

// Text answers the label for one atom; ok is false when there is
// nothing to show.
func (p *LabelProvider) Text(loc model.Location) (string, bool) {
	if p.ann == nil {
		return "", false
	}
	return p.ann.ValueForLocation(loc, p.field)
}
