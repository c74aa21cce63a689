package cif_test

import (
	"strings"
	"testing"

	"github.com/mvskit/annot/cif"
)

const smallCif = `data_test
#
_entry.id   demo
#
loop_
_colors.label_asym_id
_colors.beg_label_seq_id
_colors.end_label_seq_id
_colors.color
A 1  10 red
A 11 20 'light blue'
B .  ?  "half done"
#
loop_
_notes.text
;a note
split over lines
;
'a second note'
`

func parse(t *testing.T, s string) *cif.File {
	t.Helper()
	f, err := cif.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatal("parsing:", err)
	}
	return f
}

func TestParseSmall(t *testing.T) {
	f := parse(t, smallCif)
	if f.NBlocks() != 1 {
		t.Fatal("wanted 1 block, got", f.NBlocks())
	}
	blk := f.BlockAt(0)
	if blk.Header() != "test" {
		t.Error("block header", blk.Header())
	}
	cats := blk.Categories()
	if len(cats) != 3 {
		t.Fatal("wanted 3 categories, got", len(cats))
	}
	// Declared order matters; "first category" selection depends on it.
	if cats[0].Name() != "entry" || cats[1].Name() != "colors" || cats[2].Name() != "notes" {
		t.Error("category order:", cats[0].Name(), cats[1].Name(), cats[2].Name())
	}

	entry := blk.Category("entry")
	if v, k := entry.Value(0, "id"); k != cif.Present || v != "demo" {
		t.Error("entry.id came out as", v, k)
	}

	colors := blk.Category("_colors") // leading underscore is fine
	if colors.RowCount() != 3 {
		t.Fatal("colors rows:", colors.RowCount())
	}
	if v, _ := colors.Value(1, "color"); v != "light blue" {
		t.Error("quoted value came out as", v)
	}
	if v, _ := colors.Value(0, "COLOR"); v != "red" { // case-insensitive
		t.Error("case-insensitive field lookup gave", v)
	}
	if _, k := colors.Value(2, "beg_label_seq_id"); k != cif.NotApplicable {
		t.Error("bare dot should be NotApplicable, got", k)
	}
	if _, k := colors.Value(2, "end_label_seq_id"); k != cif.Unknown {
		t.Error("bare question mark should be Unknown, got", k)
	}
	if v, k := colors.Value(2, "color"); k != cif.Present || v != "half done" {
		t.Error("quoted markers are data, got", v, k)
	}

	notes := blk.Category("notes")
	if notes.RowCount() != 2 {
		t.Fatal("notes rows:", notes.RowCount())
	}
	if v, _ := notes.Value(0, "text"); v != "a note\nsplit over lines" {
		t.Errorf("semicolon text field came out as %q", v)
	}
}

func TestParseMultiBlock(t *testing.T) {
	f := parse(t, `data_first
_a.x 1
data_second
_b.y 2
`)
	if f.NBlocks() != 2 {
		t.Fatal("wanted 2 blocks, got", f.NBlocks())
	}
	if blk := f.BlockByHeader("SECOND"); blk == nil {
		t.Error("header lookup should be case-insensitive")
	} else if blk.FirstCategory().Name() != "b" {
		t.Error("wrong block for header second")
	}
	if f.BlockByHeader("third") != nil {
		t.Error("found a block that is not there")
	}
	if f.BlockAt(5) != nil {
		t.Error("out of range block index should give nil")
	}
}

func TestParseErrors(t *testing.T) {
	bad := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"short row", "data_x\nloop_\n_t.a\n_t.b\n1\n"},
		{"empty loop", "data_x\nloop_\n_t.a\n"},
		{"unterminated quote", "data_x\n_t.a 'oops\n"},
		{"unterminated text", "data_x\n_t.a\n;never closed\n"},
	}
	for _, tc := range bad {
		if _, err := cif.Parse(strings.NewReader(tc.in)); err == nil {
			t.Error(tc.name, ": wanted an error, got none")
		}
	}
}

func TestParseErrorHasLine(t *testing.T) {
	_, err := cif.Parse(strings.NewReader("data_x\nloop_\n_t.a\n_t.b\n1\n"))
	pe, ok := err.(*cif.ParseError)
	if !ok {
		t.Fatal("wanted a ParseError, got", err)
	}
	if pe.Line == 0 {
		t.Error("error should carry a line number:", pe)
	}
}

func TestItemsPoolIntoOneCategory(t *testing.T) {
	f := parse(t, `data_x
_entry.id    1abc
_entry.title 'a demo entry'
`)
	cat := f.BlockAt(0).FirstCategory()
	if cat.Name() != "entry" || cat.RowCount() != 1 {
		t.Fatal("items of one category should pool:", cat.Name(), cat.RowCount())
	}
	if v, _ := cat.Value(0, "title"); v != "a demo entry" {
		t.Error("title came out as", v)
	}
}
