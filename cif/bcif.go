// Reading BinaryCIF. The envelope is MessagePack; each column's
// values and its presence mask come out of the encoding chains in
// encoding.go. Everything is surfaced as strings so a category reads
// the same whether it came from text or binary.
package cif

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

type bcifFile struct {
	DataBlocks []bcifBlock `msgpack:"dataBlocks"`
}

type bcifBlock struct {
	Header     string         `msgpack:"header"`
	Categories []bcifCategory `msgpack:"categories"`
}

type bcifCategory struct {
	Name     string       `msgpack:"name"`
	RowCount int          `msgpack:"rowCount"`
	Columns  []bcifColumn `msgpack:"columns"`
}

type bcifColumn struct {
	Name string    `msgpack:"name"`
	Data bcifData  `msgpack:"data"`
	Mask *bcifData `msgpack:"mask"`
}

type bcifData struct {
	Data     []byte    `msgpack:"data"`
	Encoding []encStep `msgpack:"encoding"`
}

// ParseBinary decodes a BinaryCIF payload into the same File form the
// text reader produces.
func ParseBinary(payload []byte) (*File, error) {
	var bf bcifFile
	if err := msgpack.Unmarshal(payload, &bf); err != nil {
		return nil, fmt.Errorf("bcif: decoding envelope: %w", err)
	}
	if len(bf.DataBlocks) == 0 {
		return nil, &ParseError{Desc: "no data blocks in bcif file"}
	}
	f := &File{}
	for _, bb := range bf.DataBlocks {
		blk := newBlock(bb.Header)
		for _, bc := range bb.Categories {
			cat, err := decodeCategory(bc)
			if err != nil {
				return nil, fmt.Errorf("bcif: category %s: %w", bc.Name, err)
			}
			blk.addCategory(cat)
		}
		f.blocks = append(f.blocks, blk)
	}
	return f, nil
}

func decodeCategory(bc bcifCategory) (*Category, error) {
	cat := &Category{
		name: strings.TrimPrefix(bc.Name, "_"),
		cols: make(map[string]*column, len(bc.Columns)),
		nrow: bc.RowCount,
	}
	for _, bcol := range bc.Columns {
		col, err := decodeColumn(bcol, bc.RowCount)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", bcol.Name, err)
		}
		cat.fields = append(cat.fields, bcol.Name)
		cat.cols[strings.ToLower(bcol.Name)] = col
	}
	return cat, nil
}

func decodeColumn(bcol bcifColumn, nrow int) (*column, error) {
	var vals []string
	if len(bcol.Data.Encoding) > 0 && bcol.Data.Encoding[0].Kind == "StringArray" {
		strs, err := decodeStringArray(bcol.Data.Data, bcol.Data.Encoding[0])
		if err != nil {
			return nil, err
		}
		vals = strs
	} else {
		decoded, err := decodeChain(bcol.Data.Data, bcol.Data.Encoding)
		if err != nil {
			return nil, err
		}
		switch vv := decoded.(type) {
		case []int64:
			vals = make([]string, len(vv))
			for i, v := range vv {
				vals[i] = strconv.FormatInt(v, 10)
			}
		case []float64:
			vals = make([]string, len(vv))
			for i, v := range vv {
				vals[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		default:
			return nil, fmt.Errorf("decoded to unexpected type %T", decoded)
		}
	}
	if len(vals) != nrow {
		return nil, fmt.Errorf("%d values for %d rows", len(vals), nrow)
	}
	col := &column{vals: vals}
	if bcol.Mask != nil && len(bcol.Mask.Data) > 0 {
		mAny, err := decodeChain(bcol.Mask.Data, bcol.Mask.Encoding)
		if err != nil {
			return nil, fmt.Errorf("mask: %w", err)
		}
		mask, ok := mAny.([]int64)
		if !ok {
			return nil, fmt.Errorf("mask decoded to %T", mAny)
		}
		if len(mask) != nrow {
			return nil, fmt.Errorf("mask has %d entries for %d rows", len(mask), nrow)
		}
		kinds := make([]Kind, nrow)
		var masked bool
		for i, m := range mask {
			switch m {
			case 0:
			case 1:
				kinds[i] = NotApplicable
				col.vals[i] = ""
				masked = true
			case 2:
				kinds[i] = Unknown
				col.vals[i] = ""
				masked = true
			default:
				return nil, fmt.Errorf("mask value %d", m)
			}
		}
		if masked {
			col.kinds = kinds
		}
	}
	return col, nil
}
