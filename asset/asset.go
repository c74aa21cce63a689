// Package asset turns a url or file path into bytes. Remote sources
// go over http and may arrive gzipped; local sources are mapped into
// memory rather than slurped, which matters for the bigger structure
// and annotation files. Concurrent requests for the same source are
// coalesced so a batch of annotation specs pointing at one file costs
// one fetch.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/sync/singleflight"

	"github.com/mvskit/annot/zwrap"
)

// Kind says how the caller will treat the bytes. Both kinds pass
// through gzip detection; servers compress text and binary alike.
type Kind byte

const (
	Text Kind = iota
	Binary
)

// Resolver is the one capability the annotation loader needs.
type Resolver interface {
	Resolve(ctx context.Context, url string, kind Kind) ([]byte, error)
}

// Fetcher resolves http(s) urls and local paths. The zero value is
// not usable; call NewFetcher. Bytes returned for mapped files stay
// valid until Close.
type Fetcher struct {
	client *http.Client
	flight singleflight.Group
	mu     sync.Mutex
	maps   []mmap.MMap
}

func NewFetcher() *Fetcher {
	return &Fetcher{client: http.DefaultClient}
}

// NewFetcherWithClient lets tests and hosts bring their own transport.
func NewFetcherWithClient(c *http.Client) *Fetcher {
	return &Fetcher{client: c}
}

// Resolve fetches one source. Identical urls requested concurrently
// share a single underlying fetch.
func (f *Fetcher) Resolve(ctx context.Context, url string, kind Kind) ([]byte, error) {
	v, err, _ := f.flight.Do(url, func() (any, error) {
		return f.fetch(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return f.fetchHTTP(ctx, url)
	case strings.HasPrefix(url, "file://"):
		return f.fetchFile(strings.TrimPrefix(url, "file://"))
	case strings.Contains(url, "://"):
		return nil, fmt.Errorf("asset: unsupported url scheme in %q", url)
	default:
		return f.fetchFile(url)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.New("asset: wanted " + url + ", got " + resp.Status)
	}
	rdr, err := zwrap.WrapMaybe(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	defer rdr.Close()
	return io.ReadAll(rdr)
}

// fetchFile maps the file rather than reading it. The mapping is kept
// until the fetcher is closed, so callers may hold on to subslices.
func (f *Fetcher) fetchFile(path string) ([]byte, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	fi, err := fp.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return []byte{}, nil
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	b, err := zwrap.Decompress(mm)
	if err != nil {
		mm.Unmap()
		return nil, err
	}
	if len(b) == 0 || &b[0] != &mm[0] { // decompressed into fresh memory
		mm.Unmap()
		return b, nil
	}
	f.mu.Lock()
	f.maps = append(f.maps, mm)
	f.mu.Unlock()
	return b, nil
}

// Close unmaps every file mapping handed out by Resolve. Call it when
// the load batch the fetcher served is fully parsed.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s string
	for _, mm := range f.maps {
		if e := mm.Unmap(); e != nil {
			s = s + " " + e.Error()
		}
	}
	f.maps = nil
	if s == "" {
		return nil
	}
	return errors.New("asset:" + s)
}
