// Splitting lines at spaces and quotes.
//
// from https://www.iucr.org/resources/cif/spec/version1.1/cifsyntax
//             character or string role
// _ (underscore) identifies data name
// #              identifies comment
// '              delimits non-simple data values
// "              delimits non-simple data values
// ; at beginning of line of text delimits non-simple data values
//
// A closing quote only counts if it is followed by white space or the
// end of the line, so a value like 3',5' does not end at the first
// quote.
package cif

// piece is one field from a line. Whether it was quoted matters later:
// a bare "." or "?" is a missing-value marker, a quoted one is data.
type piece struct {
	val    []byte
	quoted bool
}

func isWhite(c byte) bool { return c == ' ' || c == '\t' }

// splitLine breaks a line into its space separated fields, honouring
// single and double quotes. The scratch slice is reused between calls
// to avoid allocating in the middle of reading a big table.
func splitLine(line []byte, scratch []piece) ([]piece, error) {
	out := scratch[:0]
	i := 0
	for {
		for i < len(line) && isWhite(line[i]) {
			i++
		}
		if i == len(line) {
			return out, nil
		}
		if c := line[i]; c == '\'' || c == '"' {
			quote := c
			start := i + 1
			j := start
			for {
				for j < len(line) && line[j] != quote {
					j++
				}
				if j == len(line) {
					return nil, &ParseError{Desc: "unterminated quote", Input: string(line)}
				}
				if j+1 == len(line) || isWhite(line[j+1]) {
					break // closing quote
				}
				j++ // quote inside a value, keep going
			}
			out = append(out, piece{val: line[start:j], quoted: true})
			i = j + 1
			continue
		}
		start := i
		for i < len(line) && !isWhite(line[i]) {
			i++
		}
		out = append(out, piece{val: line[start:i]})
	}
}
