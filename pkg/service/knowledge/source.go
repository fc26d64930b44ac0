package knowledge

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// NewSource picks the source implementation from a location: a
// gs://bucket/prefix URL reads Cloud Storage, anything else is a directory.
func NewSource(ctx context.Context, location string) (Source, error) {
	if rest, ok := strings.CutPrefix(location, "gs://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, goerr.New("bucket name is required", goerr.V("location", location))
		}
		return NewGCSSource(ctx, bucket, prefix)
	}
	return NewDirSource(location), nil
}

// DirSource reads *.md and *.txt files directly under a directory
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) String() string {
	return s.dir
}

func (s *DirSource) Documents(ctx context.Context) ([]Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read knowledge directory", goerr.V("dir", s.dir))
	}

	var docs []Document
	for _, e := range entries {
		if e.IsDir() || !isSupported(e.Name()) {
			continue
		}
		p := filepath.Join(s.dir, e.Name())
		// #nosec G304 - path is under the configured knowledge directory
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read knowledge file", goerr.V("path", p))
		}
		docs = append(docs, Document{Name: e.Name(), Text: string(raw)})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// GCSSource reads *.md and *.txt objects directly under a bucket prefix
type GCSSource struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSSource(ctx context.Context, bucket, prefix string) (*GCSSource, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &GCSSource{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *GCSSource) String() string {
	return "gs://" + s.bucket + "/" + s.prefix
}

func (s *GCSSource) Close() error {
	return s.client.Close()
}

func (s *GCSSource) Documents(ctx context.Context) ([]Document, error) {
	bucket := s.client.Bucket(s.bucket)
	it := bucket.Objects(ctx, &storage.Query{Prefix: s.prefix, Delimiter: "/"})

	var docs []Document
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list knowledge objects", goerr.V("source", s.String()))
		}
		if attrs.Name == "" || !isSupported(attrs.Name) {
			continue
		}

		text, err := s.read(ctx, bucket, attrs.Name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Name: path.Base(attrs.Name), Text: text})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

func (s *GCSSource) read(ctx context.Context, bucket *storage.BucketHandle, name string) (string, error) {
	r, err := bucket.Object(name).NewReader(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open knowledge object", goerr.V("object", name))
	}
	defer func() { _ = r.Close() }()

	raw, err := io.ReadAll(r)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read knowledge object", goerr.V("object", name))
	}
	return string(raw), nil
}
