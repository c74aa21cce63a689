package annot

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mvskit/annot/model"
)

// selector rows thrown at every schema; most are only meaningful for
// some schemas, which is the point: the indexed and the brute paths
// must agree on what a row means everywhere.
var rowZoo = []Selector{
	{},
	{LabelEntityID: optStr("1")},
	{LabelEntityID: optStr("2")},
	{LabelAsymID: optStr("A")},
	{LabelAsymID: optStr("B"), LabelEntityID: optStr("1")},
	{LabelAsymID: optStr("B"), LabelEntityID: optStr("2")},
	{AuthAsymID: optStr("A")},
	{AuthAsymID: optStr("C")},
	{LabelAsymID: optStr("A"), LabelSeqID: optInt(11)},
	{AuthAsymID: optStr("A"), AuthSeqID: optInt(111)},
	{AuthAsymID: optStr("A"), AuthSeqID: optInt(111), InsCode: optStr("A")},
	{LabelAsymID: optStr("A"), BegLabelSeqID: optInt(11), EndLabelSeqID: optInt(12)},
	{LabelAsymID: optStr("A"), BegLabelSeqID: optInt(12), EndLabelSeqID: optInt(11)},
	{LabelAsymID: optStr("C"), BegLabelSeqID: optInt(2)},
	{AuthAsymID: optStr("C"), BegAuthSeqID: optInt(100), EndAuthSeqID: optInt(550)},
	{AuthAsymID: optStr("C"), EndAuthSeqID: optInt(40)},
	{LabelAsymID: optStr("A"), LabelSeqID: optInt(10), LabelAtomID: optStr("CA")},
	{AuthAsymID: optStr("A"), AuthSeqID: optInt(110), AuthAtomID: optStr("N")},
	{AtomID: optInt(7)},
	{AtomIndex: optInt(0)},
	{LabelAtomID: optStr("CA")},
	{TypeSymbol: optStr("C")},
	{TypeSymbol: optStr("O"), AuthAsymID: optStr("C")},
	{ResidueIndex: optInt(3)},
	{InsCode: optStr("A")},
	{LabelAsymID: optStr("X")},
}

func TestResolveAgainstBrute(t *testing.T) {
	m := fixtureModel(t)
	ix := model.NewIndex(m)
	for sc := WholeStructure; sc <= AllAtomic; sc++ {
		got := resolveRows(ix, sc, rowZoo, nil)
		for i := 0; i < m.AtomCount(); i++ {
			want := ResolveAtomBrute(m, sc, rowZoo, i)
			if got[i] != want {
				t.Errorf("%v atom %d: indexed row %d, brute row %d",
					sc, i, got[i], want)
			}
		}
	}
}

func TestResolveLastRowWins(t *testing.T) {
	m := fixtureModel(t)
	ix := model.NewIndex(m)
	sels := []Selector{
		{LabelAsymID: optStr("A"), BegLabelSeqID: optInt(10), EndLabelSeqID: optInt(12)},
		{LabelAsymID: optStr("A"), BegLabelSeqID: optInt(11), EndLabelSeqID: optInt(11)},
	}
	got := resolveRows(ix, ResidueRange, sels, nil)
	want := []int32{0, 0, 1, 1, 0, 0, NoRow, NoRow, NoRow, NoRow, NoRow, NoRow, NoRow}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("atom %d: got row %d, wanted %d", i, got[i], want[i])
		}
	}
}

func TestResolveRowsCached(t *testing.T) {
	src, err := ParseJSON([]byte(`[{"label_asym_id": "A", "color": "red"}]`))
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewAnnotation("colors", Chain, src)
	if err != nil {
		t.Fatal(err)
	}
	m := fixtureModel(t)
	first := a.ResolveRows(m)
	second := a.ResolveRows(m)
	if len(first) == 0 || &first[0] != &second[0] {
		t.Error("repeat resolution must return the cached slice")
	}
	if first[0] != 0 || first[6] != NoRow {
		t.Error("wrong resolution:", first)
	}
}

func TestContradictoryRowDiagnostic(t *testing.T) {
	src, err := ParseJSON([]byte(
		`[{"label_seq_id": 11, "beg_label_seq_id": 10, "end_label_seq_id": 12}]`))
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewAnnotation("bad", AllAtomic, src)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	prev := SetDiagnostics(&buf)
	defer SetDiagnostics(prev)

	rows := a.ResolveRows(testModel(t, "m1", []tAtom{
		{"1", "A", "A", 11, false, 11, "", "CA", "C"},
	}))
	if rows[0] != NoRow {
		t.Error("a contradictory row must match nothing")
	}
	// a second model re-resolves but must not repeat the complaint
	a.ResolveRows(testModel(t, "m2", []tAtom{
		{"1", "A", "A", 11, false, 11, "", "CA", "C"},
	}))
	out := buf.String()
	if n := strings.Count(out, "row 0"); n != 1 {
		t.Errorf("wanted one diagnostic, got %d in %q", n, out)
	}
}
