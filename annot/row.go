// A row's selector fields, pulled out of the source once at load
// time. Absence and zero are different things here: a residue number
// of 0 is a real constraint, a missing one constrains nothing, so
// every numeric selector carries its own present flag.
package annot

import (
	"fmt"
	"strconv"
)

// OptInt is an optional integer selector field.
type OptInt struct {
	Value int32
	OK    bool
}

// OptStr is an optional string selector field.
type OptStr struct {
	Value string
	OK    bool
}

func optInt(v int32) OptInt  { return OptInt{Value: v, OK: true} }
func optStr(v string) OptStr { return OptStr{Value: v, OK: true} }

// Selector is one row's structural constraints. Which of these the
// matcher reads depends on the schema.
type Selector struct {
	LabelEntityID OptStr
	LabelAsymID   OptStr
	AuthAsymID    OptStr
	LabelSeqID    OptInt
	AuthSeqID     OptInt
	InsCode       OptStr
	BegLabelSeqID OptInt
	EndLabelSeqID OptInt
	BegAuthSeqID  OptInt
	EndAuthSeqID  OptInt
	ResidueIndex  OptInt
	LabelAtomID   OptStr
	AuthAtomID    OptStr
	TypeSymbol    OptStr
	AtomID        OptInt
	AtomIndex     OptInt
}

// selectorFromRow reads the schema's fields out of one source row.
// A selector field that is present but not parseable as the type the
// field needs is a format error and fails the load.
func selectorFromRow(src Source, row int, sc Schema) (Selector, error) {
	var sel Selector
	for _, field := range sc.Fields() {
		raw, ok := src.Value(row, field)
		if !ok {
			continue
		}
		switch field {
		case FieldLabelEntityID:
			sel.LabelEntityID = optStr(raw)
		case FieldLabelAsymID:
			sel.LabelAsymID = optStr(raw)
		case FieldAuthAsymID:
			sel.AuthAsymID = optStr(raw)
		case FieldInsCode:
			sel.InsCode = optStr(raw)
		case FieldLabelAtomID:
			sel.LabelAtomID = optStr(raw)
		case FieldAuthAtomID:
			sel.AuthAtomID = optStr(raw)
		case FieldTypeSymbol:
			sel.TypeSymbol = optStr(raw)
		default:
			v, err := strconv.ParseInt(raw, 10, 32)
			if err != nil {
				return Selector{}, fmt.Errorf(
					"annot: row %d field %s: %q is not an integer", row, field, raw)
			}
			iv := optInt(int32(v))
			switch field {
			case FieldLabelSeqID:
				sel.LabelSeqID = iv
			case FieldAuthSeqID:
				sel.AuthSeqID = iv
			case FieldBegLabelSeqID:
				sel.BegLabelSeqID = iv
			case FieldEndLabelSeqID:
				sel.EndLabelSeqID = iv
			case FieldBegAuthSeqID:
				sel.BegAuthSeqID = iv
			case FieldEndAuthSeqID:
				sel.EndAuthSeqID = iv
			case FieldResidueIndex:
				sel.ResidueIndex = iv
			case FieldAtomID:
				sel.AtomID = iv
			case FieldAtomIndex:
				sel.AtomIndex = iv
			}
		}
	}
	return sel, nil
}

// empty reports whether no selector field at all is present.
func (sel *Selector) empty() bool {
	return !sel.LabelEntityID.OK && !sel.LabelAsymID.OK && !sel.AuthAsymID.OK &&
		!sel.LabelSeqID.OK && !sel.AuthSeqID.OK && !sel.InsCode.OK &&
		!sel.BegLabelSeqID.OK && !sel.EndLabelSeqID.OK &&
		!sel.BegAuthSeqID.OK && !sel.EndAuthSeqID.OK && !sel.ResidueIndex.OK &&
		!sel.LabelAtomID.OK && !sel.AuthAtomID.OK && !sel.TypeSymbol.OK &&
		!sel.AtomID.OK && !sel.AtomIndex.OK
}
