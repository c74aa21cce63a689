// BinaryCIF column encodings. A column's bytes pass through a chain
// of encoders when written; we apply the chain in reverse to get the
// values back. Integer work is done in int64 so the packing decoders
// cannot overflow on the way through.
package cif

import (
	"encoding/binary"
	"fmt"
	"math"
)

// dataType codes from the BinaryCIF spec for the ByteArray encoding.
const (
	typeInt8    = 1
	typeInt16   = 2
	typeInt32   = 3
	typeUint8   = 4
	typeUint16  = 5
	typeUint32  = 6
	typeFloat32 = 32
	typeFloat64 = 33
)

// encStep is one entry of a column's encoding chain. Only the fields
// that belong to the step's kind are meaningful.
type encStep struct {
	Kind           string    `msgpack:"kind"`
	Type           int       `msgpack:"type"`
	SrcType        int       `msgpack:"srcType"`
	SrcSize        int       `msgpack:"srcSize"`
	Factor         float64   `msgpack:"factor"`
	Origin         int64     `msgpack:"origin"`
	ByteWidth      int       `msgpack:"byteWidth"`
	IsUnsigned     bool      `msgpack:"isUnsigned"`
	Min            float64   `msgpack:"min"`
	Max            float64   `msgpack:"max"`
	NumSteps       int       `msgpack:"numSteps"`
	StringData     string    `msgpack:"stringData"`
	Offsets        []byte    `msgpack:"offsets"`
	DataEncoding   []encStep `msgpack:"dataEncoding"`
	OffsetEncoding []encStep `msgpack:"offsetEncoding"`
}

// decodeChain runs a full encoding chain backwards over raw bytes.
// The result is []int64, []float64 or []string.
func decodeChain(raw []byte, chain []encStep) (any, error) {
	var cur any = raw
	for i := len(chain) - 1; i >= 0; i-- {
		var err error
		if cur, err = decodeStep(chain[i], cur); err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func decodeStep(st encStep, in any) (any, error) {
	switch st.Kind {
	case "ByteArray":
		b, ok := in.([]byte)
		if !ok {
			return nil, fmt.Errorf("bcif: ByteArray wants raw bytes, got %T", in)
		}
		return decodeByteArray(b, st.Type)
	case "FixedPoint":
		ints, ok := in.([]int64)
		if !ok {
			return nil, fmt.Errorf("bcif: FixedPoint wants integers, got %T", in)
		}
		if st.Factor == 0 {
			return nil, fmt.Errorf("bcif: FixedPoint with zero factor")
		}
		out := make([]float64, len(ints))
		for i, v := range ints {
			out[i] = float64(v) / st.Factor
		}
		return out, nil
	case "IntervalQuantization":
		ints, ok := in.([]int64)
		if !ok {
			return nil, fmt.Errorf("bcif: IntervalQuantization wants integers, got %T", in)
		}
		if st.NumSteps < 2 {
			return nil, fmt.Errorf("bcif: IntervalQuantization with %d steps", st.NumSteps)
		}
		delta := (st.Max - st.Min) / float64(st.NumSteps-1)
		out := make([]float64, len(ints))
		for i, v := range ints {
			out[i] = st.Min + delta*float64(v)
		}
		return out, nil
	case "RunLength":
		ints, ok := in.([]int64)
		if !ok {
			return nil, fmt.Errorf("bcif: RunLength wants integers, got %T", in)
		}
		if len(ints)%2 != 0 {
			return nil, fmt.Errorf("bcif: RunLength input has odd length %d", len(ints))
		}
		out := make([]int64, 0, st.SrcSize)
		for i := 0; i < len(ints); i += 2 {
			v, n := ints[i], ints[i+1]
			if n < 0 {
				return nil, fmt.Errorf("bcif: RunLength run of negative length")
			}
			for ; n > 0; n-- {
				out = append(out, v)
			}
		}
		return out, nil
	case "Delta":
		ints, ok := in.([]int64)
		if !ok {
			return nil, fmt.Errorf("bcif: Delta wants integers, got %T", in)
		}
		out := make([]int64, len(ints))
		running := st.Origin
		for i, v := range ints {
			running += v
			out[i] = running
		}
		return out, nil
	case "IntegerPacking":
		ints, ok := in.([]int64)
		if !ok {
			return nil, fmt.Errorf("bcif: IntegerPacking wants integers, got %T", in)
		}
		return unpackIntegers(ints, st)
	case "StringArray":
		return nil, fmt.Errorf("bcif: StringArray must be the outermost encoding")
	default:
		return nil, fmt.Errorf("bcif: unknown encoding kind %q", st.Kind)
	}
}

func decodeByteArray(b []byte, typ int) (any, error) {
	le := binary.LittleEndian
	switch typ {
	case typeInt8:
		out := make([]int64, len(b))
		for i, v := range b {
			out[i] = int64(int8(v))
		}
		return out, nil
	case typeUint8:
		out := make([]int64, len(b))
		for i, v := range b {
			out[i] = int64(v)
		}
		return out, nil
	case typeInt16, typeUint16:
		if len(b)%2 != 0 {
			return nil, fmt.Errorf("bcif: 16 bit array over %d bytes", len(b))
		}
		out := make([]int64, len(b)/2)
		for i := range out {
			u := le.Uint16(b[2*i:])
			if typ == typeInt16 {
				out[i] = int64(int16(u))
			} else {
				out[i] = int64(u)
			}
		}
		return out, nil
	case typeInt32, typeUint32:
		if len(b)%4 != 0 {
			return nil, fmt.Errorf("bcif: 32 bit array over %d bytes", len(b))
		}
		out := make([]int64, len(b)/4)
		for i := range out {
			u := le.Uint32(b[4*i:])
			if typ == typeInt32 {
				out[i] = int64(int32(u))
			} else {
				out[i] = int64(u)
			}
		}
		return out, nil
	case typeFloat32:
		if len(b)%4 != 0 {
			return nil, fmt.Errorf("bcif: float32 array over %d bytes", len(b))
		}
		out := make([]float64, len(b)/4)
		for i := range out {
			out[i] = float64(math.Float32frombits(le.Uint32(b[4*i:])))
		}
		return out, nil
	case typeFloat64:
		if len(b)%8 != 0 {
			return nil, fmt.Errorf("bcif: float64 array over %d bytes", len(b))
		}
		out := make([]float64, len(b)/8)
		for i := range out {
			out[i] = math.Float64frombits(le.Uint64(b[8*i:]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("bcif: unknown ByteArray type %d", typ)
	}
}

// unpackIntegers undoes integer packing: a value too big for the
// packed width was written as a run of boundary values that the
// reader keeps summing until a non-boundary value ends the run.
func unpackIntegers(packed []int64, st encStep) ([]int64, error) {
	var upper, lower int64
	switch {
	case st.IsUnsigned && st.ByteWidth == 1:
		upper, lower = math.MaxUint8, 0
	case st.IsUnsigned && st.ByteWidth == 2:
		upper, lower = math.MaxUint16, 0
	case !st.IsUnsigned && st.ByteWidth == 1:
		upper, lower = math.MaxInt8, math.MinInt8
	case !st.IsUnsigned && st.ByteWidth == 2:
		upper, lower = math.MaxInt16, math.MinInt16
	default:
		return nil, fmt.Errorf("bcif: IntegerPacking byte width %d", st.ByteWidth)
	}
	out := make([]int64, 0, st.SrcSize)
	i := 0
	for i < len(packed) {
		var v int64
		for i < len(packed) && (packed[i] == upper || (lower != 0 && packed[i] == lower)) {
			v += packed[i]
			i++
		}
		if i < len(packed) {
			v += packed[i]
			i++
		}
		out = append(out, v)
	}
	if st.SrcSize != 0 && len(out) != st.SrcSize {
		return nil, fmt.Errorf("bcif: IntegerPacking gave %d values, wanted %d", len(out), st.SrcSize)
	}
	return out, nil
}

// decodeStringArray handles the outermost StringArray encoding:
// indices into a shared string pool, with the pool's substring
// offsets carried in their own encoded array.
func decodeStringArray(raw []byte, st encStep) ([]string, error) {
	offAny, err := decodeChain(st.Offsets, st.OffsetEncoding)
	if err != nil {
		return nil, err
	}
	offsets, ok := offAny.([]int64)
	if !ok {
		return nil, fmt.Errorf("bcif: StringArray offsets decoded to %T", offAny)
	}
	idxAny, err := decodeChain(raw, st.DataEncoding)
	if err != nil {
		return nil, err
	}
	indices, ok := idxAny.([]int64)
	if !ok {
		return nil, fmt.Errorf("bcif: StringArray indices decoded to %T", idxAny)
	}
	out := make([]string, len(indices))
	for i, ix := range indices {
		if ix < 0 {
			continue // no string, mask says what it means
		}
		if int(ix) >= len(offsets)-1 {
			return nil, fmt.Errorf("bcif: string index %d beyond offset table", ix)
		}
		lo, hi := offsets[ix], offsets[ix+1]
		if lo < 0 || hi < lo || hi > int64(len(st.StringData)) {
			return nil, fmt.Errorf("bcif: bad string offsets [%d,%d)", lo, hi)
		}
		out[i] = st.StringData[lo:hi]
	}
	return out, nil
}
