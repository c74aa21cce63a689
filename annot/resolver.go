// Row resolution: computing, per atom, which row applies. Rows are
// walked in list order and their ranges overwrite the result array,
// which gives last-match-wins without any interval bookkeeping. The
// brute-force single-atom resolver at the bottom exists to check the
// indexed one; tests hold the two against each other.
package annot

import (
	"github.com/mvskit/annot/model"
)

// NoRow is the resolution value for an atom no row matched.
const NoRow int32 = -1

// resolveRows computes the winning row per atom. onErr, if not nil,
// hears about rows the matcher rejects (contradictory fields); such
// rows match nothing.
func resolveRows(ix *model.Index, sc Schema, sels []Selector, onErr func(row int, err error)) []int32 {
	out := make([]int32, ix.Model().AtomCount())
	for i := range out {
		out[i] = NoRow
	}
	for ri := range sels {
		ranges, err := matchRow(ix, sc, &sels[ri])
		if err != nil {
			if onErr != nil {
				onErr(ri, err)
			}
			continue
		}
		for _, r := range ranges {
			for i := r.first; i < r.last; i++ {
				out[i] = int32(ri)
			}
		}
	}
	return out
}

// ResolveAtomBrute scans all rows in order and returns the index of
// the last one matching the atom, or NoRow. It never touches the
// structural index; it is the reference the indexed resolver must
// agree with, and is only meant for tests and spot checks.
func ResolveAtomBrute(m *model.Model, sc Schema, sels []Selector, atom int) int32 {
	ords := residueOrdinals(m)
	win := NoRow
	for ri := range sels {
		if bruteMatchAtom(m, sc, &sels[ri], atom, ords) {
			win = int32(ri)
		}
	}
	return win
}

// residueOrdinals computes each atom's 0-based residue index in
// source order, without the index structure.
func residueOrdinals(m *model.Model) []int32 {
	n := m.AtomCount()
	out := make([]int32, n)
	ord := int32(-1)
	for i := 0; i < n; i++ {
		if i == 0 || !sameResidueAtoms(m, i-1, i) {
			ord++
		}
		out[i] = ord
	}
	return out
}

func sameResidueAtoms(m *model.Model, a, b int) bool {
	if m.LabelAsymID(a) != m.LabelAsymID(b) || m.AuthAsymID(a) != m.AuthAsymID(b) ||
		m.LabelEntityID(a) != m.LabelEntityID(b) || m.InsCode(a) != m.InsCode(b) {
		return false
	}
	la, lokA := m.LabelSeqID(a)
	lb, lokB := m.LabelSeqID(b)
	aa, aokA := m.AuthSeqID(a)
	ab, aokB := m.AuthSeqID(b)
	return la == lb && lokA == lokB && aa == ab && aokA == aokB
}

// bruteMatchAtom is the direct per-atom predicate for one row. It
// mirrors matchRow exactly, field for field.
func bruteMatchAtom(m *model.Model, sc Schema, sel *Selector, i int, ords []int32) bool {
	lseq, lok := m.LabelSeqID(i)
	aseq, aok := m.AuthSeqID(i)
	switch sc {
	case WholeStructure:
		return true
	case Entity:
		return sel.LabelEntityID.OK && m.LabelEntityID(i) == sel.LabelEntityID.Value
	case Chain:
		if !sel.LabelAsymID.OK || m.LabelAsymID(i) != sel.LabelAsymID.Value {
			return false
		}
		return !sel.LabelEntityID.OK || m.LabelEntityID(i) == sel.LabelEntityID.Value
	case AuthChain:
		return sel.AuthAsymID.OK && m.AuthAsymID(i) == sel.AuthAsymID.Value
	case Residue:
		if !sel.LabelAsymID.OK || !sel.LabelSeqID.OK {
			return false
		}
		if m.LabelAsymID(i) != sel.LabelAsymID.Value || !lok || lseq != sel.LabelSeqID.Value {
			return false
		}
		return !sel.LabelEntityID.OK || m.LabelEntityID(i) == sel.LabelEntityID.Value
	case AuthResidue:
		if !sel.AuthAsymID.OK || !sel.AuthSeqID.OK {
			return false
		}
		if m.AuthAsymID(i) != sel.AuthAsymID.Value || !aok || aseq != sel.AuthSeqID.Value {
			return false
		}
		return !sel.InsCode.OK || m.InsCode(i) == sel.InsCode.Value
	case ResidueRange:
		if !sel.LabelAsymID.OK || m.LabelAsymID(i) != sel.LabelAsymID.Value {
			return false
		}
		if sel.LabelEntityID.OK && m.LabelEntityID(i) != sel.LabelEntityID.Value {
			return false
		}
		if !lok {
			return false
		}
		if sel.BegLabelSeqID.OK && lseq < sel.BegLabelSeqID.Value {
			return false
		}
		return !sel.EndLabelSeqID.OK || lseq <= sel.EndLabelSeqID.Value
	case AuthResidueRange:
		if !sel.AuthAsymID.OK || m.AuthAsymID(i) != sel.AuthAsymID.Value {
			return false
		}
		if !aok {
			return false
		}
		if sel.BegAuthSeqID.OK && aseq < sel.BegAuthSeqID.Value {
			return false
		}
		return !sel.EndAuthSeqID.OK || aseq <= sel.EndAuthSeqID.Value
	case Atom:
		if !hasAtomFields(sel, false) {
			return false
		}
		switch {
		case sel.LabelAsymID.OK && sel.LabelSeqID.OK:
			if m.LabelAsymID(i) != sel.LabelAsymID.Value || !lok || lseq != sel.LabelSeqID.Value {
				return false
			}
			if sel.LabelEntityID.OK && m.LabelEntityID(i) != sel.LabelEntityID.Value {
				return false
			}
		case sel.AtomID.OK || sel.AtomIndex.OK:
			// global lookup, no residue constraint
		default:
			return false
		}
		return atomMatches(m, sel, false, i)
	case AuthAtom:
		if !hasAtomFields(sel, true) {
			return false
		}
		switch {
		case sel.AuthAsymID.OK && sel.AuthSeqID.OK:
			if m.AuthAsymID(i) != sel.AuthAsymID.Value || !aok || aseq != sel.AuthSeqID.Value {
				return false
			}
			if sel.InsCode.OK && m.InsCode(i) != sel.InsCode.Value {
				return false
			}
		case sel.AtomID.OK || sel.AtomIndex.OK:
		default:
			return false
		}
		return atomMatches(m, sel, true, i)
	case AllAtomic:
		if sel.LabelSeqID.OK && (sel.BegLabelSeqID.OK || sel.EndLabelSeqID.OK) {
			return false
		}
		if sel.AuthSeqID.OK && (sel.BegAuthSeqID.OK || sel.EndAuthSeqID.OK) {
			return false
		}
		if sel.empty() {
			return false
		}
		if sel.LabelEntityID.OK && m.LabelEntityID(i) != sel.LabelEntityID.Value {
			return false
		}
		if sel.LabelAsymID.OK && m.LabelAsymID(i) != sel.LabelAsymID.Value {
			return false
		}
		if sel.AuthAsymID.OK && m.AuthAsymID(i) != sel.AuthAsymID.Value {
			return false
		}
		if sel.LabelSeqID.OK && (!lok || lseq != sel.LabelSeqID.Value) {
			return false
		}
		if sel.AuthSeqID.OK && (!aok || aseq != sel.AuthSeqID.Value) {
			return false
		}
		if sel.InsCode.OK && m.InsCode(i) != sel.InsCode.Value {
			return false
		}
		if sel.BegLabelSeqID.OK && (!lok || lseq < sel.BegLabelSeqID.Value) {
			return false
		}
		if sel.EndLabelSeqID.OK && (!lok || lseq > sel.EndLabelSeqID.Value) {
			return false
		}
		if sel.BegAuthSeqID.OK && (!aok || aseq < sel.BegAuthSeqID.Value) {
			return false
		}
		if sel.EndAuthSeqID.OK && (!aok || aseq > sel.EndAuthSeqID.Value) {
			return false
		}
		if sel.ResidueIndex.OK && ords[i] != sel.ResidueIndex.Value {
			return false
		}
		return allAtomicAtom(m, sel, i)
	}
	return false
}
