package model_test

import (
	"strings"
	"testing"

	"github.com/mvskit/annot/cif"
	"github.com/mvskit/annot/model"
)

const atomSiteCif = `data_demo
loop_
_atom_site.group_PDB
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_asym_id
_atom_site.label_entity_id
_atom_site.label_seq_id
_atom_site.auth_asym_id
_atom_site.auth_seq_id
_atom_site.pdbx_PDB_ins_code
ATOM 1 N N  A 1 1 A 101 ?
ATOM 2 C CA A 1 1 A 101 ?
ATOM 3 C C  A 1 2 A 102 ?
ATOM 4 O O  A 1 2 A 102 ?
HETATM 5 O O B 2 . A 401 ?
`

func demoModel(t *testing.T) *model.Model {
	t.Helper()
	f, err := cif.Parse(strings.NewReader(atomSiteCif))
	if err != nil {
		t.Fatal("parsing:", err)
	}
	m, err := model.FromAtomSite("demo", f.BlockAt(0).Category("atom_site"))
	if err != nil {
		t.Fatal("building model:", err)
	}
	return m
}

func TestFromAtomSite(t *testing.T) {
	m := demoModel(t)
	if m.AtomCount() != 5 {
		t.Fatal("atom count", m.AtomCount())
	}
	if m.ID() != "demo" {
		t.Error("identity token", m.ID())
	}
	if m.LabelAsymID(0) != "A" || m.AuthAsymID(0) != "A" {
		t.Error("chain ids", m.LabelAsymID(0), m.AuthAsymID(0))
	}
	if s, ok := m.LabelSeqID(2); !ok || s != 2 {
		t.Error("label seq of atom 2:", s, ok)
	}
	if s, ok := m.AuthSeqID(2); !ok || s != 102 {
		t.Error("auth seq of atom 2:", s, ok)
	}
	// The water has "." for label_seq_id: absent, not zero.
	if _, ok := m.LabelSeqID(4); ok {
		t.Error("dot label_seq_id should be absent")
	}
	if m.TypeSymbol(1) != "C" || m.LabelAtomID(1) != "CA" {
		t.Error("atom 1 fields", m.TypeSymbol(1), m.LabelAtomID(1))
	}
	if m.AtomID(4) != 5 {
		t.Error("serial of atom 4:", m.AtomID(4))
	}
	if m.SourceIndex(3) != 3 {
		t.Error("source index of atom 3:", m.SourceIndex(3))
	}
	// Insertion codes were all "?": absent reads as empty string.
	if m.InsCode(0) != "" {
		t.Error("ins code came out as", m.InsCode(0))
	}
}

func TestColumnLengthMismatch(t *testing.T) {
	_, err := model.New("x", 3, model.Columns{LabelAsymID: []string{"A"}})
	if err == nil {
		t.Error("wanted a length error")
	}
}

func TestAtomSiteLabelOnly(t *testing.T) {
	// Only label columns present: auth falls back to label.
	f, err := cif.Parse(strings.NewReader(`data_d
loop_
_atom_site.id
_atom_site.label_asym_id
_atom_site.label_seq_id
1 A 7
2 A 7
`))
	if err != nil {
		t.Fatal(err)
	}
	m, err := model.FromAtomSite("d", f.BlockAt(0).Category("atom_site"))
	if err != nil {
		t.Fatal(err)
	}
	if m.AuthAsymID(0) != "A" {
		t.Error("auth chain should fall back to label, got", m.AuthAsymID(0))
	}
	if s, ok := m.AuthSeqID(1); !ok || s != 7 {
		t.Error("auth seq should fall back to label, got", s, ok)
	}
}
