// Building a model from an _atom_site category. Column names have an
// auth and a label variant and files may carry only one of them; like
// ordinary structure readers we fall back to the sibling scheme when
// a column is missing, but a value the file marks "." or "?" stays
// absent rather than becoming a zero.
package model

import (
	"fmt"
	"strconv"

	"github.com/mvskit/annot/cif"
)

// FromAtomSite builds a Model from a parsed atom_site category. The
// id becomes the model's identity token.
func FromAtomSite(id string, cat *cif.Category) (*Model, error) {
	if cat == nil {
		return nil, fmt.Errorf("model: nil atom_site category")
	}
	n := cat.RowCount()
	cols := Columns{
		LabelEntityID: strColumn(cat, "label_entity_id", ""),
		LabelAsymID:   strColumn(cat, "label_asym_id", "auth_asym_id"),
		AuthAsymID:    strColumn(cat, "auth_asym_id", "label_asym_id"),
		InsCode:       strColumn(cat, "pdbx_PDB_ins_code", ""),
		LabelAtomID:   strColumn(cat, "label_atom_id", "auth_atom_id"),
		AuthAtomID:    strColumn(cat, "auth_atom_id", "label_atom_id"),
		TypeSymbol:    strColumn(cat, "type_symbol", ""),
	}
	var err error
	if cols.LabelSeqID, cols.LabelSeqOK, err = intColumn(cat, "label_seq_id"); err != nil {
		return nil, err
	}
	if cols.AuthSeqID, cols.AuthSeqOK, err = intColumn(cat, "auth_seq_id"); err != nil {
		return nil, err
	}
	if cols.AuthSeqID == nil { // fall back to the label numbering
		cols.AuthSeqID, cols.AuthSeqOK = cols.LabelSeqID, cols.LabelSeqOK
	}
	serial, serialOK, err := intColumn(cat, "id")
	if err != nil {
		return nil, err
	}
	if serialOK == nil {
		cols.AtomID = serial
	} else if serial != nil {
		// A serial marked absent is odd but not our problem; use
		// the position instead.
		cols.AtomID = make([]int32, n)
		for i := range cols.AtomID {
			if serialOK[i] {
				cols.AtomID[i] = serial[i]
			} else {
				cols.AtomID[i] = int32(i) + 1
			}
		}
	}
	return New(id, n, cols)
}

func strColumn(cat *cif.Category, name, alt string) []string {
	if !cat.HasField(name) {
		if alt == "" || !cat.HasField(alt) {
			return nil
		}
		name = alt
	}
	n := cat.RowCount()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		if v, k := cat.Value(i, name); k == cif.Present {
			out[i] = v
		}
	}
	return out
}

func intColumn(cat *cif.Category, name string) ([]int32, []bool, error) {
	if !cat.HasField(name) {
		return nil, nil, nil
	}
	n := cat.RowCount()
	vals := make([]int32, n)
	oks := make([]bool, n)
	allOK := true
	for i := 0; i < n; i++ {
		v, k := cat.Value(i, name)
		if k != cif.Present {
			allOK = false
			continue
		}
		parsed, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("model: atom_site.%s row %d: %q is not an integer", name, i, v)
		}
		vals[i] = int32(parsed)
		oks[i] = true
	}
	if allOK {
		return vals, nil, nil
	}
	return vals, oks, nil
}
