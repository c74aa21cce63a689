// Package annot maps tables of annotation rows onto atoms. A row
// selects a structural range (an entity, a chain, a residue, a span
// of residues, one atom) in either label or auth numbering, and
// carries arbitrary payload fields such as a color or a label text.
// Row order matters: when rows overlap, the last matching row wins.
package annot

import (
	"fmt"
)

// Schema is the granularity a row's selector fields are read at. It
// fixes which fields mean anything and whether residue numbers are
// compared exactly or as ranges.
type Schema byte

const (
	WholeStructure Schema = iota
	Entity
	Chain
	AuthChain
	Residue
	AuthResidue
	ResidueRange
	AuthResidueRange
	Atom
	AuthAtom
	AllAtomic
)

var schemaNames = [...]string{
	WholeStructure:   "whole-structure",
	Entity:           "entity",
	Chain:            "chain",
	AuthChain:        "auth-chain",
	Residue:          "residue",
	AuthResidue:      "auth-residue",
	ResidueRange:     "residue-range",
	AuthResidueRange: "auth-residue-range",
	Atom:             "atom",
	AuthAtom:         "auth-atom",
	AllAtomic:        "all-atomic",
}

func (s Schema) String() string {
	if int(s) < len(schemaNames) {
		return schemaNames[s]
	}
	return fmt.Sprintf("schema(%d)", byte(s))
}

// ParseSchema turns the wire name of a granularity into a Schema.
func ParseSchema(name string) (Schema, error) {
	for i, n := range schemaNames {
		if n == name {
			return Schema(i), nil
		}
	}
	return 0, fmt.Errorf("annot: unknown schema %q", name)
}

// The selector field vocabulary. Anything else in a row is payload.
const (
	FieldLabelEntityID = "label_entity_id"
	FieldLabelAsymID   = "label_asym_id"
	FieldAuthAsymID    = "auth_asym_id"
	FieldLabelSeqID    = "label_seq_id"
	FieldAuthSeqID     = "auth_seq_id"
	FieldInsCode       = "pdbx_PDB_ins_code"
	FieldBegLabelSeqID = "beg_label_seq_id"
	FieldEndLabelSeqID = "end_label_seq_id"
	FieldBegAuthSeqID  = "beg_auth_seq_id"
	FieldEndAuthSeqID  = "end_auth_seq_id"
	FieldResidueIndex  = "residue_index"
	FieldLabelAtomID   = "label_atom_id"
	FieldAuthAtomID    = "auth_atom_id"
	FieldTypeSymbol    = "type_symbol"
	FieldAtomID        = "atom_id"
	FieldAtomIndex     = "atom_index"
)

var schemaFields = map[Schema][]string{
	WholeStructure: {},
	Entity:         {FieldLabelEntityID},
	Chain:          {FieldLabelEntityID, FieldLabelAsymID},
	AuthChain:      {FieldAuthAsymID},
	Residue:        {FieldLabelEntityID, FieldLabelAsymID, FieldLabelSeqID},
	AuthResidue:    {FieldAuthAsymID, FieldAuthSeqID, FieldInsCode},
	ResidueRange: {FieldLabelEntityID, FieldLabelAsymID,
		FieldBegLabelSeqID, FieldEndLabelSeqID},
	AuthResidueRange: {FieldAuthAsymID, FieldBegAuthSeqID, FieldEndAuthSeqID},
	Atom: {FieldLabelEntityID, FieldLabelAsymID, FieldLabelSeqID,
		FieldLabelAtomID, FieldTypeSymbol, FieldAtomID, FieldAtomIndex},
	AuthAtom: {FieldAuthAsymID, FieldAuthSeqID, FieldInsCode,
		FieldAuthAtomID, FieldTypeSymbol, FieldAtomID, FieldAtomIndex},
	AllAtomic: {FieldLabelEntityID, FieldLabelAsymID, FieldAuthAsymID,
		FieldLabelSeqID, FieldAuthSeqID, FieldInsCode,
		FieldBegLabelSeqID, FieldEndLabelSeqID,
		FieldBegAuthSeqID, FieldEndAuthSeqID, FieldResidueIndex,
		FieldLabelAtomID, FieldAuthAtomID, FieldTypeSymbol,
		FieldAtomID, FieldAtomIndex},
}

// Fields returns the selector fields this schema reads from a row.
func (s Schema) Fields() []string { return schemaFields[s] }
