package annot

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Diagnostics go to stderr unless a host redirects them. They are for
// a person reading the console; nothing parses them.
var (
	diagMu sync.Mutex
	diagW  io.Writer = os.Stderr
)

// SetDiagnostics redirects diagnostic output and returns the previous
// writer. Tests use it to capture the messages.
func SetDiagnostics(w io.Writer) io.Writer {
	diagMu.Lock()
	defer diagMu.Unlock()
	old := diagW
	diagW = w
	return old
}

func diagf(format string, args ...any) {
	diagMu.Lock()
	defer diagMu.Unlock()
	fmt.Fprintf(diagW, "annot: "+format+"\n", args...)
}
