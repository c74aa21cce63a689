// The structural index. One linear pass segments the atom columns
// into contiguous chain and residue runs; per-chain orderings sorted
// by label and by auth numbering are built on top, because source
// files do not promise that auth numbering is sorted. Lookups at
// query time are binary searches over those orderings.
package model

import (
	"sort"
)

// Residue is a contiguous atom run [FirstAtom, LastAtom).
type Residue struct {
	FirstAtom, LastAtom int
	LabelSeq            int32
	LabelSeqOK          bool
	AuthSeq             int32
	AuthSeqOK           bool
	Ins                 string
	Ordinal             int32 // 0-based residue index in source order
}

// Chain is a contiguous atom run holding its residues in atom order.
type Chain struct {
	LabelID, AuthID, EntityID string
	FirstAtom, LastAtom       int
	Residues                  []Residue
	byLabel                   []int // residue positions sorted by label seq
	byAuth                    []int // sorted by (auth seq, ins code)
}

// Index is built once per model and reused for every annotation row
// evaluated against that model.
type Index struct {
	m        *Model
	chains   []Chain
	byLabel  map[string][]int
	byAuth   map[string][]int
	byEntity map[string][]int
}

// NewIndex builds the index. A model with zero atoms gives a valid
// empty index.
func NewIndex(m *Model) *Index {
	ix := &Index{
		m:        m,
		byLabel:  make(map[string][]int),
		byAuth:   make(map[string][]int),
		byEntity: make(map[string][]int),
	}
	n := m.AtomCount()
	var ordinal int32
	for i := 0; i < n; {
		ch := Chain{
			LabelID:   m.LabelAsymID(i),
			AuthID:    m.AuthAsymID(i),
			EntityID:  m.LabelEntityID(i),
			FirstAtom: i,
		}
		for i < n && m.LabelAsymID(i) == ch.LabelID &&
			m.AuthAsymID(i) == ch.AuthID && m.LabelEntityID(i) == ch.EntityID {
			r := Residue{FirstAtom: i, Ordinal: ordinal, Ins: m.InsCode(i)}
			r.LabelSeq, r.LabelSeqOK = m.LabelSeqID(i)
			r.AuthSeq, r.AuthSeqOK = m.AuthSeqID(i)
			for i < n && sameResidue(m, &ch, &r, i) {
				i++
			}
			r.LastAtom = i
			ch.Residues = append(ch.Residues, r)
			ordinal++
		}
		ch.LastAtom = i
		ch.sortResidues()
		pos := len(ix.chains)
		ix.chains = append(ix.chains, ch)
		ix.byLabel[ch.LabelID] = append(ix.byLabel[ch.LabelID], pos)
		ix.byAuth[ch.AuthID] = append(ix.byAuth[ch.AuthID], pos)
		ix.byEntity[ch.EntityID] = append(ix.byEntity[ch.EntityID], pos)
	}
	return ix
}

func sameResidue(m *Model, ch *Chain, r *Residue, i int) bool {
	if m.LabelAsymID(i) != ch.LabelID || m.AuthAsymID(i) != ch.AuthID ||
		m.LabelEntityID(i) != ch.EntityID {
		return false
	}
	ls, lok := m.LabelSeqID(i)
	as, aok := m.AuthSeqID(i)
	return ls == r.LabelSeq && lok == r.LabelSeqOK &&
		as == r.AuthSeq && aok == r.AuthSeqOK && m.InsCode(i) == r.Ins
}

func (ch *Chain) sortResidues() {
	nres := len(ch.Residues)
	ch.byLabel = make([]int, nres)
	ch.byAuth = make([]int, nres)
	for i := range ch.byLabel {
		ch.byLabel[i] = i
		ch.byAuth[i] = i
	}
	res := ch.Residues
	sort.SliceStable(ch.byLabel, func(a, b int) bool {
		ra, rb := &res[ch.byLabel[a]], &res[ch.byLabel[b]]
		if ra.LabelSeqOK != rb.LabelSeqOK {
			return ra.LabelSeqOK // absent label numbers sort last
		}
		return ra.LabelSeq < rb.LabelSeq
	})
	sort.SliceStable(ch.byAuth, func(a, b int) bool {
		ra, rb := &res[ch.byAuth[a]], &res[ch.byAuth[b]]
		if ra.AuthSeqOK != rb.AuthSeqOK {
			return ra.AuthSeqOK
		}
		if ra.AuthSeq != rb.AuthSeq {
			return ra.AuthSeq < rb.AuthSeq
		}
		return ra.Ins < rb.Ins
	})
}

func (ix *Index) Model() *Model   { return ix.m }
func (ix *Index) Chains() []Chain { return ix.chains }

func (ix *Index) chainsAt(idx []int) []*Chain {
	out := make([]*Chain, len(idx))
	for i, p := range idx {
		out[i] = &ix.chains[p]
	}
	return out
}

// ChainsByLabel returns the chain runs with a label asym id. A chain
// id can repeat when runs are interleaved in the file.
func (ix *Index) ChainsByLabel(id string) []*Chain { return ix.chainsAt(ix.byLabel[id]) }

// ChainsByAuth returns the chain runs with an auth asym id. One auth
// id commonly covers several label chains.
func (ix *Index) ChainsByAuth(id string) []*Chain { return ix.chainsAt(ix.byAuth[id]) }

// ChainsByEntity returns the chain runs belonging to an entity.
func (ix *Index) ChainsByEntity(id string) []*Chain { return ix.chainsAt(ix.byEntity[id]) }

// ResiduesLabelRange collects residues whose label seq id lies in
// [lo, hi]; either bound may be absent, meaning unbounded on that
// side. Residues without a label number never match.
func (ch *Chain) ResiduesLabelRange(lo int32, loOK bool, hi int32, hiOK bool) []*Residue {
	res := ch.Residues
	present := sort.Search(len(ch.byLabel), func(i int) bool {
		return !res[ch.byLabel[i]].LabelSeqOK
	})
	order := ch.byLabel[:present]
	start := 0
	if loOK {
		start = sort.Search(len(order), func(i int) bool {
			return res[order[i]].LabelSeq >= lo
		})
	}
	var out []*Residue
	for _, p := range order[start:] {
		if hiOK && res[p].LabelSeq > hi {
			break
		}
		out = append(out, &res[p])
	}
	return out
}

// ResiduesLabelSeq is the exact-number lookup in label numbering.
func (ch *Chain) ResiduesLabelSeq(seq int32) []*Residue {
	return ch.ResiduesLabelRange(seq, true, seq, true)
}

// ResiduesAuthRange is like ResiduesLabelRange in auth numbering.
// Insertion codes play no part in range bounds.
func (ch *Chain) ResiduesAuthRange(lo int32, loOK bool, hi int32, hiOK bool) []*Residue {
	res := ch.Residues
	present := sort.Search(len(ch.byAuth), func(i int) bool {
		return !res[ch.byAuth[i]].AuthSeqOK
	})
	order := ch.byAuth[:present]
	start := 0
	if loOK {
		start = sort.Search(len(order), func(i int) bool {
			return res[order[i]].AuthSeq >= lo
		})
	}
	var out []*Residue
	for _, p := range order[start:] {
		if hiOK && res[p].AuthSeq > hi {
			break
		}
		out = append(out, &res[p])
	}
	return out
}

// ResiduesAuthSeq finds residues with an exact auth number. With an
// insertion code given, (seq, ins) is the composite key; without one
// every insertion variant of seq matches.
func (ch *Chain) ResiduesAuthSeq(seq int32, ins string, insOK bool) []*Residue {
	cands := ch.ResiduesAuthRange(seq, true, seq, true)
	if !insOK {
		return cands
	}
	out := cands[:0]
	for _, r := range cands {
		if r.Ins == ins {
			out = append(out, r)
		}
	}
	return out
}

// ResidueByOrdinal finds a residue by its 0-based source-file index.
func (ch *Chain) ResidueByOrdinal(ord int32) *Residue {
	res := ch.Residues
	i := sort.Search(len(res), func(i int) bool { return res[i].Ordinal >= ord })
	if i < len(res) && res[i].Ordinal == ord {
		return &res[i]
	}
	return nil
}
