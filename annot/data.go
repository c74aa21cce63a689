// The three shapes annotation data arrives in: a JSON array of row
// objects, a JSON object of column arrays, and a CIF category. The
// shape is resolved once at load time into a Source; nothing past
// this file branches on it.
package annot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mvskit/annot/cif"
)

// Source is the capability a parsed payload must offer: a row count
// and a string value per (row, field), with ok=false when the value
// is absent (missing key, JSON null, CIF "."/"?").
type Source interface {
	RowCount() int
	Value(row int, field string) (string, bool)
}

type cifSource struct {
	cat *cif.Category
}

func (s cifSource) RowCount() int { return s.cat.RowCount() }

func (s cifSource) Value(row int, field string) (string, bool) {
	v, k := s.cat.Value(row, field)
	return v, k == cif.Present
}

// CIFSource wraps a category as a Source.
func CIFSource(cat *cif.Category) Source { return cifSource{cat: cat} }

type jsonRowsSource struct {
	rows []map[string]any
}

func (s jsonRowsSource) RowCount() int { return len(s.rows) }

func (s jsonRowsSource) Value(row int, field string) (string, bool) {
	if row < 0 || row >= len(s.rows) {
		return "", false
	}
	v, ok := s.rows[row][field]
	if !ok {
		return "", false
	}
	return jsonString(v)
}

type jsonColumnsSource struct {
	cols map[string][]any
	nrow int
}

func (s jsonColumnsSource) RowCount() int { return s.nrow }

func (s jsonColumnsSource) Value(row int, field string) (string, bool) {
	col, ok := s.cols[field]
	if !ok || row < 0 || row >= len(col) {
		return "", false
	}
	return jsonString(col[row])
}

// jsonString renders a decoded JSON scalar as a string. Nulls are
// absent; arrays and objects have no string form and are absent too.
func jsonString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// ParseJSON turns a JSON payload into a Source, deciding between the
// array-of-objects and object-of-arrays shapes by the first byte.
func ParseJSON(payload []byte) (Source, error) {
	trimmed := bytes.TrimLeft(payload, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("annot: empty json payload")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	switch trimmed[0] {
	case '[':
		var rows []map[string]any
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("annot: decoding json rows: %w", err)
		}
		return jsonRowsSource{rows: rows}, nil
	case '{':
		var cols map[string][]any
		if err := dec.Decode(&cols); err != nil {
			return nil, fmt.Errorf("annot: decoding json columns: %w", err)
		}
		nrow := -1
		for name, col := range cols {
			if nrow == -1 {
				nrow = len(col)
			} else if len(col) != nrow {
				return nil, fmt.Errorf(
					"annot: json column %q has %d values, others have %d",
					name, len(col), nrow)
			}
		}
		if nrow == -1 {
			nrow = 0
		}
		return jsonColumnsSource{cols: cols, nrow: nrow}, nil
	default:
		return nil, fmt.Errorf("annot: json payload is neither array nor object")
	}
}
