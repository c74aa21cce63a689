// An error implementation that keeps the line number and the line
// that provoked the problem. The reader calls fail() as soon as it
// notices something wrong and the message is handed back from Parse.
package cif

import (
	"strconv"
)

const maxMsgLen = 70

// ParseError says what went wrong and where. Line numbers count from
// one and refer to the input as read, before comment stripping.
type ParseError struct {
	Line  int    // line number, 0 if not tied to a line
	Input string // the offending line, possibly truncated
	Desc  string // description of the problem
}

func firstPart(s string) string {
	if len(s) > maxMsgLen {
		return s[:maxMsgLen]
	}
	return s
}

func (e *ParseError) Error() string {
	var msg string
	if e.Line != 0 {
		msg = "line " + strconv.Itoa(e.Line) + ": "
	}
	msg += e.Desc
	if e.Input != "" {
		msg += "\nline starting with\n" + firstPart(e.Input)
	}
	return msg
}
