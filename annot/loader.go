// Loading a batch of annotation specs. Each distinct (format, url)
// pair is fetched and parsed exactly once per batch, no matter how
// many specs name it: the first request installs a pending entry in
// the batch map and later requests wait on it. A failed spec takes
// down only its own annotation id; the rest of the batch is
// unaffected.
package annot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mvskit/annot/asset"
	"github.com/mvskit/annot/cif"
)

// Format of an annotation source.
type Format byte

const (
	FormatJSON Format = iota
	FormatCIF
	FormatBCIF
)

var formatNames = [...]string{FormatJSON: "json", FormatCIF: "cif", FormatBCIF: "bcif"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", byte(f))
}

// ParseFormat turns "json", "cif" or "bcif" into a Format.
func ParseFormat(name string) (Format, error) {
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("annot: unknown format %q", name)
}

// BlockSel picks a data block out of a CIF file. The zero value
// means the first block.
type BlockSel struct {
	Header  string // if non-empty, match the data_ header
	Index   int    // 0-based block index, honoured when ByIndex is set
	ByIndex bool
}

// Spec describes one annotation to load.
type Spec struct {
	ID       string
	URL      string
	Format   Format
	Schema   Schema
	Block    BlockSel // cif/bcif only
	Category string   // cif/bcif only; empty means first category
}

// batchKey dedups fetches: same url at a different format is a
// different parse, so both parts key the entry.
type batchKey struct {
	format Format
	url    string
}

type pending struct {
	done   chan struct{}
	parsed any // Source for json, *cif.File for cif/bcif
	err    error
}

type batch struct {
	res     asset.Resolver
	mu      sync.Mutex
	entries map[batchKey]*pending
}

func newBatch(res asset.Resolver) *batch {
	return &batch{res: res, entries: make(map[batchKey]*pending)}
}

// parsedSource fetches and parses one source, or waits for the in-flight
// request another spec already started.
func (b *batch) parsedSource(ctx context.Context, format Format, url string) (any, error) {
	key := batchKey{format: format, url: url}
	b.mu.Lock()
	if p, ok := b.entries[key]; ok {
		b.mu.Unlock()
		<-p.done
		return p.parsed, p.err
	}
	p := &pending{done: make(chan struct{})}
	b.entries[key] = p
	b.mu.Unlock()

	p.parsed, p.err = b.fetchParse(ctx, format, url)
	close(p.done)
	return p.parsed, p.err
}

func (b *batch) fetchParse(ctx context.Context, format Format, url string) (any, error) {
	kind := asset.Text
	if format == FormatBCIF {
		kind = asset.Binary
	}
	payload, err := b.res.Resolve(ctx, url, kind)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	switch format {
	case FormatJSON:
		return ParseJSON(payload)
	case FormatCIF:
		return cif.Parse(bytes.NewReader(payload))
	case FormatBCIF:
		return cif.ParseBinary(payload)
	}
	return nil, fmt.Errorf("annot: unknown format %v", format)
}

// sourceForSpec resolves a spec to its Source: for cif that means
// picking the block and the category.
func (b *batch) sourceForSpec(ctx context.Context, spec Spec) (Source, error) {
	parsed, err := b.parsedSource(ctx, spec.Format, spec.URL)
	if err != nil {
		return nil, err
	}
	if spec.Format == FormatJSON {
		return parsed.(Source), nil
	}
	f := parsed.(*cif.File)
	blk, err := selectBlock(f, spec.Block)
	if err != nil {
		return nil, err
	}
	cat, err := selectCategory(blk, spec.Category)
	if err != nil {
		return nil, err
	}
	return CIFSource(cat), nil
}

func selectBlock(f *cif.File, sel BlockSel) (*cif.Block, error) {
	switch {
	case sel.Header != "":
		if blk := f.BlockByHeader(sel.Header); blk != nil {
			return blk, nil
		}
		return nil, fmt.Errorf("annot: no data block with header %q", sel.Header)
	case sel.ByIndex:
		if blk := f.BlockAt(sel.Index); blk != nil {
			return blk, nil
		}
		return nil, fmt.Errorf("annot: block index %d out of range, file has %d blocks",
			sel.Index, f.NBlocks())
	default:
		blk := f.BlockAt(0)
		if blk == nil {
			return nil, errors.New("annot: cif file has no data blocks")
		}
		return blk, nil
	}
}

func selectCategory(blk *cif.Block, name string) (*cif.Category, error) {
	if name == "" {
		if cat := blk.FirstCategory(); cat != nil {
			return cat, nil
		}
		return nil, fmt.Errorf("annot: block %q has no categories", blk.Header())
	}
	if cat := blk.Category(name); cat != nil {
		return cat, nil
	}
	return nil, fmt.Errorf("annot: block %q has no category %q", blk.Header(), name)
}

// LoadAnnotations loads a batch of specs. The returned collection
// holds every annotation that loaded; the error, when not nil, is the
// joined failures of the ids that did not, each wrapped with its id.
// Callers that need all-or-nothing check the error; rendering hosts
// typically keep the survivors and surface the error as diagnostics.
func LoadAnnotations(ctx context.Context, res asset.Resolver, specs []Spec) (*Annotations, error) {
	b := newBatch(res)
	var (
		anns []*Annotation
		errs []error
		seen = make(map[string]bool, len(specs))
	)
	for _, spec := range specs {
		if seen[spec.ID] {
			errs = append(errs, fmt.Errorf("annotation %q: duplicate id", spec.ID))
			continue
		}
		seen[spec.ID] = true
		src, err := b.sourceForSpec(ctx, spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("annotation %q: %w", spec.ID, err))
			continue
		}
		ann, err := NewAnnotation(spec.ID, spec.Schema, src)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		anns = append(anns, ann)
	}
	return NewAnnotations(anns), errors.Join(errs...)
}
