package knowledge

import (
	"context"
	"path"
	"strings"
)

// Document is one knowledge-base file
type Document struct {
	Name string // base file name, e.g. "billing.md"
	Text string
}

// Stem returns the file name without its extension
func (d Document) Stem() string {
	return strings.TrimSuffix(d.Name, path.Ext(d.Name))
}

// Source lists knowledge-base documents sorted by name
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
	String() string
}

// IngestOption controls an ingestion run
type IngestOption struct {
	Source        Source
	ClearExisting bool
}

var supportedExtensions = map[string]struct{}{
	".md":  {},
	".txt": {},
}

func isSupported(name string) bool {
	_, ok := supportedExtensions[strings.ToLower(path.Ext(name))]
	return ok
}
