// Package model holds an immutable atomic structure as parallel
// columns, one entry per atom, and builds the index the annotation
// engine queries. Residue and chain identifiers exist in two schemes:
// "label" is the canonical one assigned on deposition processing,
// "auth" is whatever the depositor wrote. Both are kept per atom.
package model

// Columns carries the per-atom identifier columns. Slices must all
// have the model's atom count as length, or be nil; a nil string
// column reads as empty everywhere, and nil LabelSeqOK/AuthSeqOK with
// a non-nil id column means every id is present.
type Columns struct {
	LabelEntityID []string
	LabelAsymID   []string
	AuthAsymID    []string
	LabelSeqID    []int32
	LabelSeqOK    []bool
	AuthSeqID     []int32
	AuthSeqOK     []bool
	InsCode       []string
	LabelAtomID   []string
	AuthAtomID    []string
	TypeSymbol    []string
	AtomID        []int32 // _atom_site.id, the deposited serial
	SourceIndex   []int32 // 0-based atom ordinal in the source file
}

// Model is an immutable structure with a stable identity token used
// as a cache key. Atom ordering never changes after construction.
type Model struct {
	id   string
	n    int
	cols Columns
}

// New builds a model from columns. Every non-nil column must have
// length n.
func New(id string, n int, cols Columns) (*Model, error) {
	check := func(name string, l int) error {
		if l != 0 && l != n {
			return &LengthError{Column: name, Got: l, Want: n}
		}
		return nil
	}
	for _, c := range []struct {
		name string
		l    int
	}{
		{"label_entity_id", len(cols.LabelEntityID)},
		{"label_asym_id", len(cols.LabelAsymID)},
		{"auth_asym_id", len(cols.AuthAsymID)},
		{"label_seq_id", len(cols.LabelSeqID)},
		{"label_seq_ok", len(cols.LabelSeqOK)},
		{"auth_seq_id", len(cols.AuthSeqID)},
		{"auth_seq_ok", len(cols.AuthSeqOK)},
		{"ins_code", len(cols.InsCode)},
		{"label_atom_id", len(cols.LabelAtomID)},
		{"auth_atom_id", len(cols.AuthAtomID)},
		{"type_symbol", len(cols.TypeSymbol)},
		{"atom_id", len(cols.AtomID)},
		{"source_index", len(cols.SourceIndex)},
	} {
		if err := check(c.name, c.l); err != nil {
			return nil, err
		}
	}
	return &Model{id: id, n: n, cols: cols}, nil
}

// LengthError reports a column whose length does not match the atom
// count.
type LengthError struct {
	Column    string
	Got, Want int
}

func (e *LengthError) Error() string {
	return "model: column " + e.Column + " has wrong length"
}

func (m *Model) ID() string     { return m.id }
func (m *Model) AtomCount() int { return m.n }

func strAt(col []string, i int) string {
	if col == nil {
		return ""
	}
	return col[i]
}

func (m *Model) LabelEntityID(i int) string { return strAt(m.cols.LabelEntityID, i) }
func (m *Model) LabelAsymID(i int) string   { return strAt(m.cols.LabelAsymID, i) }
func (m *Model) AuthAsymID(i int) string    { return strAt(m.cols.AuthAsymID, i) }
func (m *Model) InsCode(i int) string       { return strAt(m.cols.InsCode, i) }
func (m *Model) LabelAtomID(i int) string   { return strAt(m.cols.LabelAtomID, i) }
func (m *Model) AuthAtomID(i int) string    { return strAt(m.cols.AuthAtomID, i) }
func (m *Model) TypeSymbol(i int) string    { return strAt(m.cols.TypeSymbol, i) }

// LabelSeqID returns the label residue number of an atom and whether
// one is present. Waters and ligands often have none.
func (m *Model) LabelSeqID(i int) (int32, bool) {
	if m.cols.LabelSeqID == nil {
		return 0, false
	}
	if m.cols.LabelSeqOK != nil && !m.cols.LabelSeqOK[i] {
		return 0, false
	}
	return m.cols.LabelSeqID[i], true
}

func (m *Model) AuthSeqID(i int) (int32, bool) {
	if m.cols.AuthSeqID == nil {
		return 0, false
	}
	if m.cols.AuthSeqOK != nil && !m.cols.AuthSeqOK[i] {
		return 0, false
	}
	return m.cols.AuthSeqID[i], true
}

// AtomID is the deposited atom serial. Without a column it defaults
// to the 1-based position.
func (m *Model) AtomID(i int) int32 {
	if m.cols.AtomID == nil {
		return int32(i) + 1
	}
	return m.cols.AtomID[i]
}

// SourceIndex is the 0-based ordinal of the atom in the source file.
func (m *Model) SourceIndex(i int) int32 {
	if m.cols.SourceIndex == nil {
		return int32(i)
	}
	return m.cols.SourceIndex[i]
}

// Location is the per-atom query key used by coloring, labeling and
// tooltip consumers.
type Location struct {
	Model *Model
	Atom  int
}
