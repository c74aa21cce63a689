package annot_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mvskit/annot/annot"
	"github.com/mvskit/annot/model"
)

func TestColorThemeMissingAnnotation(t *testing.T) {
	var buf bytes.Buffer
	prev := annot.SetDiagnostics(&buf)
	defer annot.SetDiagnostics(prev)

	m := chainModel(t, []int32{10})
	loc := model.Location{Model: m, Atom: 0}
	theme := annot.NewColorTheme(nil, "nowhere", "", "grey")
	for i := 0; i < 3; i++ {
		if got := theme.Color(loc); got != "grey" {
			t.Fatalf("got %q, wanted the background", got)
		}
	}
	if n := strings.Count(buf.String(), "nowhere"); n != 1 {
		t.Errorf("wanted one diagnostic, got %d in %q", n, buf.String())
	}
}

func TestColorThemeMissingField(t *testing.T) {
	res := newStub(map[string]string{"u": rangesJSON})
	as, err := annot.LoadAnnotations(context.Background(), res, []annot.Spec{
		{ID: "colors", URL: "u", Format: annot.FormatJSON, Schema: annot.ResidueRange},
	})
	if err != nil {
		t.Fatal(err)
	}
	m := chainModel(t, []int32{10})
	theme := annot.NewColorTheme(as, "colors", "no_such_field", "grey")
	if got := theme.Color(model.Location{Model: m, Atom: 0}); got != "grey" {
		t.Errorf("absent field: got %q, wanted the background", got)
	}
}

func TestLabelProviderOutOfRange(t *testing.T) {
	res := newStub(map[string]string{"u": rangesJSON})
	as, err := annot.LoadAnnotations(context.Background(), res, []annot.Spec{
		{ID: "colors", URL: "u", Format: annot.FormatJSON, Schema: annot.ResidueRange},
	})
	if err != nil {
		t.Fatal(err)
	}
	m := chainModel(t, []int32{10})
	lp := annot.NewLabelProvider(as, "colors", "color")
	if _, ok := lp.Text(model.Location{Model: m, Atom: 99}); ok {
		t.Error("an out of range atom must have no text")
	}
	if _, ok := lp.Text(model.Location{}); ok {
		t.Error("a nil model must have no text")
	}
}
