// Package cif reads CIF and BinaryCIF into a uniform tabular form:
// a File holds data blocks, a block holds categories in declared
// order, a category is a set of named string columns. Values that the
// file marks as "." (not applicable) or "?" (unknown) keep that
// marking instead of being turned into empty strings.
package cif

import (
	"bytes"
	"io"
	"strings"
)

// Kind says whether a value is really there.
type Kind byte

const (
	Present       Kind = iota
	NotApplicable      // "." in the file
	Unknown            // "?" in the file
)

// column holds one field of a category. kinds is nil when every value
// is present, which is the common case.
type column struct {
	vals  []string
	kinds []Kind
}

func (c *column) kindAt(row int) Kind {
	if c.kinds == nil {
		return Present
	}
	return c.kinds[row]
}

func (c *column) set(row int, v string, k Kind) {
	c.vals[row] = v
	if k != Present {
		if c.kinds == nil {
			c.kinds = make([]Kind, len(c.vals))
		}
		c.kinds[row] = k
	}
}

// Category is one table, like atom_site. Field names are stored
// without the category prefix and matched case-insensitively.
type Category struct {
	name   string
	fields []string // declared order
	cols   map[string]*column
	nrow   int
}

func (c *Category) Name() string     { return c.name }
func (c *Category) RowCount() int    { return c.nrow }
func (c *Category) Fields() []string { return c.fields }

func (c *Category) HasField(field string) bool {
	_, ok := c.cols[strings.ToLower(field)]
	return ok
}

// Value returns the string value of a field at a row. A missing
// field, an out of range row, or a "."/"?" marker give a non-Present
// kind and an empty string.
func (c *Category) Value(row int, field string) (string, Kind) {
	col, ok := c.cols[strings.ToLower(field)]
	if !ok || row < 0 || row >= c.nrow {
		return "", Unknown
	}
	if k := col.kindAt(row); k != Present {
		return "", k
	}
	return col.vals[row], Present
}

// Block is one data_ block.
type Block struct {
	header string
	cats   []*Category
	byName map[string]*Category
}

func (b *Block) Header() string { return b.header }

// Categories returns the categories in the order they were declared.
func (b *Block) Categories() []*Category { return b.cats }

// Category finds a category by name, case-insensitively, with or
// without the leading underscore.
func (b *Block) Category(name string) *Category {
	return b.byName[strings.ToLower(strings.TrimPrefix(name, "_"))]
}

// FirstCategory returns the first declared category, or nil for an
// empty block.
func (b *Block) FirstCategory() *Category {
	if len(b.cats) == 0 {
		return nil
	}
	return b.cats[0]
}

func (b *Block) addCategory(c *Category) {
	b.cats = append(b.cats, c)
	b.byName[strings.ToLower(c.name)] = c
}

// File is a parsed CIF or BinaryCIF file.
type File struct {
	blocks []*Block
}

func (f *File) NBlocks() int { return len(f.blocks) }

func (f *File) BlockAt(i int) *Block {
	if i < 0 || i >= len(f.blocks) {
		return nil
	}
	return f.blocks[i]
}

// BlockByHeader finds a block by its data_ header, case-insensitively.
func (f *File) BlockByHeader(h string) *Block {
	for _, b := range f.blocks {
		if strings.EqualFold(b.header, h) {
			return b
		}
	}
	return nil
}

func newBlock(header string) *Block {
	return &Block{header: header, byName: make(map[string]*Category)}
}

// parser carries the scanner and the file being built. The parsing
// itself is a set of state functions; each looks at the current line,
// does its job and says which state comes next.
type parser struct {
	*lineScanner
	file    *File
	blk     *Block
	headers []string // loop headers being collected
	scratch []piece
}

type stateFn func(*parser) stateFn

// Parse reads CIF text and returns the parsed file. Lines before the
// first data_ header go into an unnamed block, which some small files
// rely on.
func Parse(r io.Reader) (*File, error) {
	p := &parser{
		lineScanner: newLineScanner(r),
		file:        &File{},
		scratch:     make([]piece, 0, 32),
	}
	if !p.next() {
		if p.err != nil {
			return nil, p.err
		}
		return nil, &ParseError{Desc: "empty cif file"}
	}
	for state := stateTop; state != nil && p.ok; {
		state = state(p)
	}
	if !p.ok {
		return nil, p.err
	}
	if len(p.file.blocks) == 0 {
		return nil, &ParseError{Desc: "no data blocks in cif file"}
	}
	return p.file, nil
}

// block returns the block under construction, making the unnamed one
// if data items turn up before any data_ header.
func (p *parser) block() *Block {
	if p.blk == nil {
		p.blk = newBlock("")
		p.file.blocks = append(p.file.blocks, p.blk)
	}
	return p.blk
}

// splitName breaks _atom_site.id into ("atom_site", "id").
func splitName(tag []byte) (cat, field string, ok bool) {
	dot := bytes.IndexByte(tag, '.')
	if dot < 1 || tag[0] != '_' {
		return "", "", false
	}
	return string(tag[1:dot]), string(tag[dot+1:]), true
}

// isSpecial returns true if the line is not simply more of a table.
// Usually this means there is a new directive coming.
func isSpecial(line []byte) bool {
	switch {
	case line == nil:
		return true
	case line[0] == '_':
		return true
	case bytes.HasPrefix(line, []byte("loop_")):
		return true
	case bytes.HasPrefix(line, []byte("data_")):
		return true
	default:
		return false
	}
}

// stateTop looks at the current line and decides where to jump.
func stateTop(p *parser) stateFn {
	b := p.cur()
	switch {
	case b == nil:
		return nil
	case bytes.HasPrefix(b, []byte("data_")):
		return stateData
	case bytes.HasPrefix(b, []byte("loop_")):
		return stateLoop
	case b[0] == '_':
		return stateItem
	default:
		p.fail("unrecognised directive", true)
		return nil
	}
}

// stateData starts a new data block.
func stateData(p *parser) stateFn {
	hdr := string(bytes.TrimPrefix(p.cur(), []byte("data_")))
	p.blk = newBlock(hdr)
	p.file.blocks = append(p.file.blocks, p.blk)
	if !p.next() {
		return nil
	}
	return stateTop
}

// stateLoop jumps over the loop_ line into the headers.
func stateLoop(p *parser) stateFn {
	if !p.next() {
		p.fail("loop_ at end of file", true)
		return nil
	}
	return stateLoopHdr
}

// stateLoopHdr collects the _category.field headers of a loop.
func stateLoopHdr(p *parser) stateFn {
	p.headers = p.headers[:0]
	for b := p.cur(); b != nil && b[0] == '_'; b = p.cur() {
		p.headers = append(p.headers, string(bytes.TrimRight(b, " \t")))
		if !p.next() {
			break
		}
	}
	if len(p.headers) == 0 {
		p.fail("no headers after loop_", true)
		return nil
	}
	return stateLoopTable
}

// stateLoopTable reads the body of a loop into a category.
func stateLoopTable(p *parser) stateFn {
	ncol := len(p.headers)
	catName, _, ok := splitName([]byte(p.headers[0]))
	if !ok {
		p.fail("cannot split header at dot: "+p.headers[0], true)
		return nil
	}
	cat := &Category{name: catName, cols: make(map[string]*column, ncol)}
	colOrder := make([]*column, ncol)
	for i, h := range p.headers {
		c, field, ok := splitName([]byte(h))
		if !ok || c != catName {
			p.fail("loop mixes categories or bad header: "+h, true)
			return nil
		}
		col := &column{}
		cat.fields = append(cat.fields, field)
		cat.cols[strings.ToLower(field)] = col
		colOrder[i] = col
	}

	row := make([]piece, 0, ncol)
	for !isSpecial(p.cur()) {
		vals, ok := p.rowValues(ncol, row[:0])
		if !ok {
			return nil
		}
		if vals == nil {
			break
		}
		for i, pc := range vals {
			col := colOrder[i]
			col.vals = append(col.vals, string(pc.val))
			if k := markerKind(pc); k != Present {
				if col.kinds == nil {
					col.kinds = make([]Kind, len(col.vals)-1, cap(col.vals))
				}
				for len(col.kinds) < len(col.vals)-1 {
					col.kinds = append(col.kinds, Present)
				}
				col.kinds = append(col.kinds, k)
			} else if col.kinds != nil {
				col.kinds = append(col.kinds, Present)
			}
		}
		cat.nrow++
	}
	if cat.nrow == 0 {
		p.fail("empty loop table for "+catName, true)
		return nil
	}
	p.block().addCategory(cat)
	p.headers = p.headers[:0]
	return stateTop
}

// markerKind classifies a bare "." or "?". Quoted ones are data.
func markerKind(pc piece) Kind {
	if pc.quoted || len(pc.val) != 1 {
		return Present
	}
	switch pc.val[0] {
	case '.':
		return NotApplicable
	case '?':
		return Unknown
	}
	return Present
}

// rowValues collects exactly n values, reading as many lines as it
// takes and gluing semicolon text fields together. A nil result with
// ok=true means the table ended cleanly before any value was read.
func (p *parser) rowValues(n int, out []piece) ([]piece, bool) {
	for len(out) < n {
		b := p.cur()
		if isSpecial(b) {
			if len(out) == 0 {
				return nil, true
			}
			p.fail("table row ended early", true)
			return nil, false
		}
		if b[0] == ';' {
			text, ok := p.semiText()
			if !ok {
				return nil, false
			}
			out = append(out, piece{val: []byte(text), quoted: true})
			continue
		}
		pieces, err := splitLine(b, p.scratch)
		if err != nil {
			pe := err.(*ParseError)
			p.fail(pe.Desc, true)
			return nil, false
		}
		for _, pc := range pieces {
			v := make([]byte, len(pc.val))
			copy(v, pc.val)
			out = append(out, piece{val: v, quoted: pc.quoted})
		}
		if !p.next() {
			break
		}
	}
	if len(out) != n {
		p.fail("table row ended early", true)
		return nil, false
	}
	return out, true
}

// semiText reads a ;-delimited text field, starting on the line that
// begins with the semicolon.
func (p *parser) semiText() (string, bool) {
	var sb strings.Builder
	sb.Write(p.cur()[1:])
	for {
		if !p.next() {
			p.fail("unterminated ; text field", true)
			return "", false
		}
		b := p.cur()
		if b[0] == ';' {
			break
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.Write(b)
	}
	p.next() // move past the closing semicolon
	return sb.String(), true
}

// stateItem reads one _category.field value pair. Consecutive items
// of the same category pool into a single one-row category.
func stateItem(p *parser) stateFn {
	line := p.cur()
	pieces, err := splitLine(line, p.scratch)
	if err != nil {
		pe := err.(*ParseError)
		p.fail(pe.Desc, true)
		return nil
	}
	catName, field, ok := splitName(pieces[0].val)
	if !ok {
		p.fail("cannot split data name at dot: "+string(pieces[0].val), true)
		return nil
	}

	var val piece
	switch {
	case len(pieces) == 2:
		v := make([]byte, len(pieces[1].val))
		copy(v, pieces[1].val)
		val = piece{val: v, quoted: pieces[1].quoted}
		p.next()
	case len(pieces) == 1:
		// Value on the following line(s).
		if !p.next() {
			p.fail("data item with no value", true)
			return nil
		}
		b := p.cur()
		if b[0] == ';' {
			text, ok := p.semiText()
			if !ok {
				return nil
			}
			val = piece{val: []byte(text), quoted: true}
		} else {
			sub, err := splitLine(b, p.scratch)
			if err != nil || len(sub) != 1 {
				p.fail("badly formed data item value", true)
				return nil
			}
			v := make([]byte, len(sub[0].val))
			copy(v, sub[0].val)
			val = piece{val: v, quoted: sub[0].quoted}
			p.next()
		}
	default:
		p.fail("too many fields on data item line", true)
		return nil
	}

	blk := p.block()
	cat := blk.Category(catName)
	if cat == nil {
		cat = &Category{name: catName, cols: make(map[string]*column), nrow: 1}
		blk.addCategory(cat)
	} else if cat.nrow != 1 {
		p.fail("data item for category already defined as a loop: "+catName, true)
		return nil
	}
	col := &column{vals: make([]string, 1)}
	col.set(0, string(val.val), markerKind(val))
	cat.fields = append(cat.fields, field)
	cat.cols[strings.ToLower(field)] = col
	return stateTop
}
