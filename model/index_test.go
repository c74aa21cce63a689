package model_test

import (
	"testing"

	"github.com/mvskit/annot/model"
)

// rig builds a model straight from columns. Each entry is one atom.
type rigAtom struct {
	ent, lchain, achain string
	lseq                int32
	noLseq              bool
	aseq                int32
	ins                 string
	name, sym           string
}

func rigModel(t *testing.T, id string, atoms []rigAtom) *model.Model {
	t.Helper()
	n := len(atoms)
	cols := model.Columns{
		LabelEntityID: make([]string, n),
		LabelAsymID:   make([]string, n),
		AuthAsymID:    make([]string, n),
		LabelSeqID:    make([]int32, n),
		LabelSeqOK:    make([]bool, n),
		AuthSeqID:     make([]int32, n),
		InsCode:       make([]string, n),
		LabelAtomID:   make([]string, n),
		AuthAtomID:    make([]string, n),
		TypeSymbol:    make([]string, n),
	}
	for i, a := range atoms {
		cols.LabelEntityID[i] = a.ent
		cols.LabelAsymID[i] = a.lchain
		cols.AuthAsymID[i] = a.achain
		cols.LabelSeqID[i] = a.lseq
		cols.LabelSeqOK[i] = !a.noLseq
		cols.AuthSeqID[i] = a.aseq
		cols.InsCode[i] = a.ins
		cols.LabelAtomID[i] = a.name
		cols.AuthAtomID[i] = a.name
		cols.TypeSymbol[i] = a.sym
	}
	m, err := model.New(id, n, cols)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestIndexEmptyModel(t *testing.T) {
	m, err := model.New("empty", 0, model.Columns{})
	if err != nil {
		t.Fatal(err)
	}
	ix := model.NewIndex(m)
	if len(ix.Chains()) != 0 {
		t.Error("empty model should index to no chains")
	}
	if ix.ChainsByLabel("A") != nil && len(ix.ChainsByLabel("A")) != 0 {
		t.Error("lookups on an empty index should come back empty")
	}
}

func TestIndexSegmentation(t *testing.T) {
	m := rigModel(t, "m1", []rigAtom{
		{"1", "A", "A", 1, false, 101, "", "N", "N"},
		{"1", "A", "A", 1, false, 101, "", "CA", "C"},
		{"1", "A", "A", 2, false, 102, "", "N", "N"},
		{"1", "B", "A", 1, false, 201, "", "N", "N"},
		{"2", "C", "C", 1, false, 1, "", "O", "O"},
	})
	ix := model.NewIndex(m)
	if len(ix.Chains()) != 3 {
		t.Fatal("wanted 3 chain runs, got", len(ix.Chains()))
	}
	a := ix.ChainsByLabel("A")
	if len(a) != 1 || len(a[0].Residues) != 2 {
		t.Fatal("chain A should have 2 residues")
	}
	if a[0].Residues[0].FirstAtom != 0 || a[0].Residues[0].LastAtom != 2 {
		t.Error("first residue range", a[0].Residues[0])
	}
	// auth chain A covers two label chains
	if len(ix.ChainsByAuth("A")) != 2 {
		t.Error("auth chain A should cover 2 label chain runs")
	}
	if len(ix.ChainsByEntity("1")) != 2 || len(ix.ChainsByEntity("2")) != 1 {
		t.Error("entity grouping off")
	}
	// residue ordinals count through the whole file
	if ord := a[0].Residues[1].Ordinal; ord != 1 {
		t.Error("second residue ordinal", ord)
	}
	c := ix.ChainsByLabel("C")
	if c[0].Residues[0].Ordinal != 3 {
		t.Error("chain C residue ordinal", c[0].Residues[0].Ordinal)
	}
}

func TestIndexInsertionCodes(t *testing.T) {
	// 100, 100A, 100B: same auth number, distinct residues.
	m := rigModel(t, "m2", []rigAtom{
		{"1", "A", "A", 10, false, 100, "", "N", "N"},
		{"1", "A", "A", 11, false, 100, "A", "N", "N"},
		{"1", "A", "A", 12, false, 100, "B", "N", "N"},
	})
	ix := model.NewIndex(m)
	ch := ix.ChainsByLabel("A")[0]
	if len(ch.Residues) != 3 {
		t.Fatal("wanted 3 residues, got", len(ch.Residues))
	}
	all := ch.ResiduesAuthSeq(100, "", false)
	if len(all) != 3 {
		t.Error("without a code all insertion variants match, got", len(all))
	}
	only := ch.ResiduesAuthSeq(100, "A", true)
	if len(only) != 1 || only[0].Ins != "A" {
		t.Error("code A should pick exactly the inserted residue")
	}
}

func TestIndexAuthUnsorted(t *testing.T) {
	// Auth numbering out of order in the file; ranges must still work.
	m := rigModel(t, "m3", []rigAtom{
		{"1", "A", "A", 1, false, 305, "", "N", "N"},
		{"1", "A", "A", 2, false, 12, "", "N", "N"},
		{"1", "A", "A", 3, false, 140, "", "N", "N"},
	})
	ch := model.NewIndex(m).ChainsByLabel("A")[0]
	got := ch.ResiduesAuthRange(10, true, 200, true)
	if len(got) != 2 {
		t.Fatal("wanted residues 12 and 140, got", len(got))
	}
	if got[0].AuthSeq != 12 || got[1].AuthSeq != 140 {
		t.Error("auth range order", got[0].AuthSeq, got[1].AuthSeq)
	}
	// inverted bounds match nothing
	if r := ch.ResiduesAuthRange(200, true, 10, true); len(r) != 0 {
		t.Error("begin > end must be empty, got", len(r))
	}
	// unbounded on the low side
	if r := ch.ResiduesLabelRange(0, false, 2, true); len(r) != 2 {
		t.Error("open-ended label range gave", len(r))
	}
}

func TestResidueWithoutLabelSeq(t *testing.T) {
	m := rigModel(t, "m4", []rigAtom{
		{"1", "A", "A", 5, false, 5, "", "N", "N"},
		{"1", "A", "A", 0, true, 401, "", "O", "O"}, // a water
	})
	ch := model.NewIndex(m).ChainsByLabel("A")[0]
	if r := ch.ResiduesLabelRange(0, false, 0, false); len(r) != 1 {
		t.Error("unnumbered residues must stay out of label ranges, got", len(r))
	}
	if r := ch.ResiduesAuthSeq(401, "", false); len(r) != 1 {
		t.Error("the water is still there by auth number")
	}
}
