// Package mock provides test doubles shared across the propwait packages.
package mock

// IOWriter is an io.Writer which captures everything written to it for later
// inspection, typically as the destination for the log package during tests.
type IOWriter struct {
	line []byte
}

func (t *IOWriter) Reset() {
	t.line = make([]byte, 0)
}

func (t *IOWriter) Write(b []byte) (int, error) {
	t.line = append(t.line, b...)

	return len(b), nil
}

func (t *IOWriter) String() string {
	return string(t.line)
}

func (t *IOWriter) Len() int {
	return len(t.line)
}
