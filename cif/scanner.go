package cif

import (
	"bufio"
	"bytes"
	"io"
)

// lineScanner wraps bufio.Scanner. It jumps over blank lines, strips
// leading and trailing white space, drops comment lines and counts
// newlines so error messages can say where they come from.
// Comment characters are only recognised at the start of a line. A '#'
// can appear inside quoted values, so we must not cut lines in the
// middle.
type lineScanner struct {
	*bufio.Scanner
	token []byte      // bytes returned by cur()
	n     int         // line number in the input
	err   *ParseError // filled out as soon as an error happens
	ok    bool        // are we still OK, or has an error happened?
}

func newLineScanner(r io.Reader) *lineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &lineScanner{Scanner: sc, ok: true}
}

// fail records the problem for reporting when it is convenient. If
// there was already an error, the old one wins; the first error is
// the one worth reading.
func (s *lineScanner) fail(desc string, saveLine bool) {
	if !s.ok {
		return
	}
	s.ok = false
	s.err = &ParseError{Desc: desc}
	if saveLine {
		s.err.Line = s.n
		s.err.Input = string(s.token)
	}
}

// next advances to the next interesting line. It returns false on EOF
// or error; after EOF cur() returns nil.
func (s *lineScanner) next() bool {
	if !s.ok {
		s.token = nil
		return false
	}
	for {
		if !s.Scan() {
			s.token = nil
			if e := s.Err(); e != nil {
				s.fail(e.Error(), false)
				return false
			}
			return false // plain EOF
		}
		s.n++
		b := bytes.TrimSpace(s.Bytes())
		if len(b) == 0 || b[0] == '#' {
			continue
		}
		// Semicolon text fields keep their leading semicolon, but
		// are otherwise handed up verbatim.
		s.token = b
		return true
	}
}

// cur returns the current line, or nil after EOF or an error.
func (s *lineScanner) cur() []byte { return s.token }
