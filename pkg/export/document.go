package export

import "fmt"

// Column describes one table column. Width is a relative weight used by the PDF renderer.
type Column struct {
	Key    string
	Header string
	Width  float64
}

// Document is a titled table with an optional block of key/value details printed above it.
type Document struct {
	Title   string
	Details [][2]string
	Columns []Column
	Rows    []map[string]string
}

// Renderer turns a Document into bytes of a single file format.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}

func (d Document) validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("document requires at least one column")
	}
	return nil
}

func (d Document) headers() []string {
	out := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		out[i] = col.Header
	}
	return out
}
