// Turning one row into atom ranges. Each schema has its own matcher;
// they all return ordered, non-overlapping [first, last) ranges.
// Absence of a schema's discriminating field means the row matches
// nothing. Only whole-structure matches unconditionally.
package annot

import (
	"errors"
	"sort"

	"github.com/mvskit/annot/model"
)

// atomRange is [First, Last) over a model's atom positions.
type atomRange struct {
	first, last int
}

// errContradictoryRow marks a row that gives both an exact residue
// number and a range bound on the same numbering axis. The behaviour
// such a row asks for is undefined, so it matches nothing and the
// resolver says so once.
var errContradictoryRow = errors.New("annot: row has both exact and range residue fields on one axis")

// matchRow computes the atom ranges one row selects.
func matchRow(ix *model.Index, sc Schema, sel *Selector) ([]atomRange, error) {
	switch sc {
	case WholeStructure:
		n := ix.Model().AtomCount()
		if n == 0 {
			return nil, nil
		}
		return []atomRange{{0, n}}, nil
	case Entity:
		if !sel.LabelEntityID.OK {
			return nil, nil
		}
		return chainRanges(ix.ChainsByEntity(sel.LabelEntityID.Value)), nil
	case Chain:
		if !sel.LabelAsymID.OK {
			return nil, nil
		}
		return chainRanges(entityFilter(ix.ChainsByLabel(sel.LabelAsymID.Value), sel)), nil
	case AuthChain:
		if !sel.AuthAsymID.OK {
			return nil, nil
		}
		return chainRanges(ix.ChainsByAuth(sel.AuthAsymID.Value)), nil
	case Residue:
		if !sel.LabelAsymID.OK || !sel.LabelSeqID.OK {
			return nil, nil
		}
		chains := entityFilter(ix.ChainsByLabel(sel.LabelAsymID.Value), sel)
		var out []atomRange
		for _, ch := range chains {
			out = appendResidues(out, ch.ResiduesLabelSeq(sel.LabelSeqID.Value))
		}
		return normalize(out), nil
	case AuthResidue:
		if !sel.AuthAsymID.OK || !sel.AuthSeqID.OK {
			return nil, nil
		}
		var out []atomRange
		for _, ch := range ix.ChainsByAuth(sel.AuthAsymID.Value) {
			out = appendResidues(out,
				ch.ResiduesAuthSeq(sel.AuthSeqID.Value, sel.InsCode.Value, sel.InsCode.OK))
		}
		return normalize(out), nil
	case ResidueRange:
		if !sel.LabelAsymID.OK {
			return nil, nil
		}
		chains := entityFilter(ix.ChainsByLabel(sel.LabelAsymID.Value), sel)
		var out []atomRange
		for _, ch := range chains {
			out = appendResidues(out, ch.ResiduesLabelRange(
				sel.BegLabelSeqID.Value, sel.BegLabelSeqID.OK,
				sel.EndLabelSeqID.Value, sel.EndLabelSeqID.OK))
		}
		return normalize(out), nil
	case AuthResidueRange:
		if !sel.AuthAsymID.OK {
			return nil, nil
		}
		var out []atomRange
		for _, ch := range ix.ChainsByAuth(sel.AuthAsymID.Value) {
			out = appendResidues(out, ch.ResiduesAuthRange(
				sel.BegAuthSeqID.Value, sel.BegAuthSeqID.OK,
				sel.EndAuthSeqID.Value, sel.EndAuthSeqID.OK))
		}
		return normalize(out), nil
	case Atom:
		return matchAtomSchema(ix, sel, false), nil
	case AuthAtom:
		return matchAtomSchema(ix, sel, true), nil
	case AllAtomic:
		return matchAllAtomic(ix, sel)
	}
	return nil, nil
}

func entityFilter(chains []*model.Chain, sel *Selector) []*model.Chain {
	if !sel.LabelEntityID.OK {
		return chains
	}
	out := chains[:0]
	for _, ch := range chains {
		if ch.EntityID == sel.LabelEntityID.Value {
			out = append(out, ch)
		}
	}
	return out
}

func chainRanges(chains []*model.Chain) []atomRange {
	var out []atomRange
	for _, ch := range chains {
		if ch.LastAtom > ch.FirstAtom {
			out = append(out, atomRange{ch.FirstAtom, ch.LastAtom})
		}
	}
	return normalize(out)
}

func appendResidues(out []atomRange, residues []*model.Residue) []atomRange {
	for _, r := range residues {
		if r.LastAtom > r.FirstAtom {
			out = append(out, atomRange{r.FirstAtom, r.LastAtom})
		}
	}
	return out
}

// normalize sorts ranges by start and merges touching neighbours, so
// the resolver can overwrite them without caring where they came
// from.
func normalize(rs []atomRange) []atomRange {
	if len(rs) < 2 {
		return rs
	}
	sort.Slice(rs, func(a, b int) bool { return rs[a].first < rs[b].first })
	out := rs[:1]
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if r.first <= last.last {
			if r.last > last.last {
				last.last = r.last
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// hasAtomFields reports whether any atom-level field is present, for
// the given numbering scheme.
func hasAtomFields(sel *Selector, auth bool) bool {
	name := sel.LabelAtomID.OK
	if auth {
		name = sel.AuthAtomID.OK
	}
	return name || sel.TypeSymbol.OK || sel.AtomID.OK || sel.AtomIndex.OK
}

// atomMatches checks the atom-level constraints of a selector against
// one atom.
func atomMatches(m *model.Model, sel *Selector, auth bool, i int) bool {
	if auth {
		if sel.AuthAtomID.OK && m.AuthAtomID(i) != sel.AuthAtomID.Value {
			return false
		}
	} else {
		if sel.LabelAtomID.OK && m.LabelAtomID(i) != sel.LabelAtomID.Value {
			return false
		}
	}
	if sel.TypeSymbol.OK && m.TypeSymbol(i) != sel.TypeSymbol.Value {
		return false
	}
	if sel.AtomID.OK && m.AtomID(i) != sel.AtomID.Value {
		return false
	}
	if sel.AtomIndex.OK && m.SourceIndex(i) != sel.AtomIndex.Value {
		return false
	}
	return true
}

// matchAtomSchema handles the atom and auth-atom schemas: an atom
// picked by name/serial/index inside an identified residue, or
// globally by serial or source index when no residue is given.
func matchAtomSchema(ix *model.Index, sel *Selector, auth bool) []atomRange {
	if !hasAtomFields(sel, auth) {
		return nil
	}
	m := ix.Model()
	var residues []*model.Residue
	switch {
	case !auth && sel.LabelAsymID.OK && sel.LabelSeqID.OK:
		for _, ch := range entityFilter(ix.ChainsByLabel(sel.LabelAsymID.Value), sel) {
			residues = append(residues, ch.ResiduesLabelSeq(sel.LabelSeqID.Value)...)
		}
	case auth && sel.AuthAsymID.OK && sel.AuthSeqID.OK:
		for _, ch := range ix.ChainsByAuth(sel.AuthAsymID.Value) {
			residues = append(residues,
				ch.ResiduesAuthSeq(sel.AuthSeqID.Value, sel.InsCode.Value, sel.InsCode.OK)...)
		}
	case sel.AtomID.OK || sel.AtomIndex.OK:
		// No residue scope; a serial or index still identifies the
		// atom globally.
		var out []atomRange
		for i := 0; i < m.AtomCount(); i++ {
			if atomMatches(m, sel, auth, i) {
				out = append(out, atomRange{i, i + 1})
			}
		}
		return normalize(out)
	default:
		// An atom name alone, with no residue to look in, does not
		// identify an atom.
		return nil
	}
	var out []atomRange
	for _, r := range residues {
		for i := r.FirstAtom; i < r.LastAtom; i++ {
			if atomMatches(m, sel, auth, i) {
				out = append(out, atomRange{i, i + 1})
			}
		}
	}
	return normalize(out)
}

// residue-level constraint check shared by the all-atomic path.
func residueSatisfies(r *model.Residue, sel *Selector) bool {
	if sel.LabelSeqID.OK && (!r.LabelSeqOK || r.LabelSeq != sel.LabelSeqID.Value) {
		return false
	}
	if sel.AuthSeqID.OK && (!r.AuthSeqOK || r.AuthSeq != sel.AuthSeqID.Value) {
		return false
	}
	if sel.InsCode.OK && r.Ins != sel.InsCode.Value {
		return false
	}
	if sel.BegLabelSeqID.OK && (!r.LabelSeqOK || r.LabelSeq < sel.BegLabelSeqID.Value) {
		return false
	}
	if sel.EndLabelSeqID.OK && (!r.LabelSeqOK || r.LabelSeq > sel.EndLabelSeqID.Value) {
		return false
	}
	if sel.BegAuthSeqID.OK && (!r.AuthSeqOK || r.AuthSeq < sel.BegAuthSeqID.Value) {
		return false
	}
	if sel.EndAuthSeqID.OK && (!r.AuthSeqOK || r.AuthSeq > sel.EndAuthSeqID.Value) {
		return false
	}
	if sel.ResidueIndex.OK && r.Ordinal != sel.ResidueIndex.Value {
		return false
	}
	return true
}

func hasResidueFields(sel *Selector) bool {
	return sel.LabelSeqID.OK || sel.AuthSeqID.OK || sel.InsCode.OK ||
		sel.BegLabelSeqID.OK || sel.EndLabelSeqID.OK ||
		sel.BegAuthSeqID.OK || sel.EndAuthSeqID.OK || sel.ResidueIndex.OK
}

// matchAllAtomic is the most general path: every present field
// constrains, ANDed across the entity, chain, residue and atom axes.
// Cheap fields narrow first (chains, then residues through the sorted
// orderings); only the surviving atom ranges get a per-atom scan, and
// only when an atom-level field is present.
func matchAllAtomic(ix *model.Index, sel *Selector) ([]atomRange, error) {
	if sel.LabelSeqID.OK && (sel.BegLabelSeqID.OK || sel.EndLabelSeqID.OK) {
		return nil, errContradictoryRow
	}
	if sel.AuthSeqID.OK && (sel.BegAuthSeqID.OK || sel.EndAuthSeqID.OK) {
		return nil, errContradictoryRow
	}
	if sel.empty() {
		return nil, nil
	}

	// chain narrowing
	var chains []*model.Chain
	switch {
	case sel.LabelAsymID.OK:
		chains = ix.ChainsByLabel(sel.LabelAsymID.Value)
	case sel.AuthAsymID.OK:
		chains = ix.ChainsByAuth(sel.AuthAsymID.Value)
	case sel.LabelEntityID.OK:
		chains = ix.ChainsByEntity(sel.LabelEntityID.Value)
	default:
		all := ix.Chains()
		chains = make([]*model.Chain, len(all))
		for i := range all {
			chains[i] = &all[i]
		}
	}
	kept := chains[:0]
	for _, ch := range chains {
		if sel.LabelEntityID.OK && ch.EntityID != sel.LabelEntityID.Value {
			continue
		}
		if sel.LabelAsymID.OK && ch.LabelID != sel.LabelAsymID.Value {
			continue
		}
		if sel.AuthAsymID.OK && ch.AuthID != sel.AuthAsymID.Value {
			continue
		}
		kept = append(kept, ch)
	}

	// residue narrowing, through the sorted orderings where a field
	// lets us
	var out []atomRange
	needResidues := hasResidueFields(sel)
	scanAtoms := hasAtomFields(sel, false) || sel.AuthAtomID.OK
	m := ix.Model()
	for _, ch := range kept {
		var cands []*model.Residue
		switch {
		case !needResidues:
			if !scanAtoms {
				out = append(out, atomRange{ch.FirstAtom, ch.LastAtom})
				continue
			}
			for i := ch.FirstAtom; i < ch.LastAtom; i++ {
				if allAtomicAtom(m, sel, i) {
					out = append(out, atomRange{i, i + 1})
				}
			}
			continue
		case sel.LabelSeqID.OK:
			cands = ch.ResiduesLabelSeq(sel.LabelSeqID.Value)
		case sel.BegLabelSeqID.OK || sel.EndLabelSeqID.OK:
			cands = ch.ResiduesLabelRange(
				sel.BegLabelSeqID.Value, sel.BegLabelSeqID.OK,
				sel.EndLabelSeqID.Value, sel.EndLabelSeqID.OK)
		case sel.AuthSeqID.OK:
			cands = ch.ResiduesAuthSeq(sel.AuthSeqID.Value, sel.InsCode.Value, sel.InsCode.OK)
		case sel.BegAuthSeqID.OK || sel.EndAuthSeqID.OK:
			cands = ch.ResiduesAuthRange(
				sel.BegAuthSeqID.Value, sel.BegAuthSeqID.OK,
				sel.EndAuthSeqID.Value, sel.EndAuthSeqID.OK)
		case sel.ResidueIndex.OK:
			if r := ch.ResidueByOrdinal(sel.ResidueIndex.Value); r != nil {
				cands = []*model.Residue{r}
			}
		default: // only an insertion code
			for i := range ch.Residues {
				cands = append(cands, &ch.Residues[i])
			}
		}
		for _, r := range cands {
			if !residueSatisfies(r, sel) {
				continue
			}
			if !scanAtoms {
				out = append(out, atomRange{r.FirstAtom, r.LastAtom})
				continue
			}
			for i := r.FirstAtom; i < r.LastAtom; i++ {
				if allAtomicAtom(m, sel, i) {
					out = append(out, atomRange{i, i + 1})
				}
			}
		}
	}
	return normalize(out), nil
}

// allAtomicAtom checks the atom axis of an all-atomic row, where both
// naming schemes can constrain at once.
func allAtomicAtom(m *model.Model, sel *Selector, i int) bool {
	if sel.LabelAtomID.OK && m.LabelAtomID(i) != sel.LabelAtomID.Value {
		return false
	}
	if sel.AuthAtomID.OK && m.AuthAtomID(i) != sel.AuthAtomID.Value {
		return false
	}
	if sel.TypeSymbol.OK && m.TypeSymbol(i) != sel.TypeSymbol.Value {
		return false
	}
	if sel.AtomID.OK && m.AtomID(i) != sel.AtomID.Value {
		return false
	}
	if sel.AtomIndex.OK && m.SourceIndex(i) != sel.AtomIndex.Value {
		return false
	}
	return true
}
