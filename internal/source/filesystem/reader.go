package filesystem

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"medchron/internal/domain"
)

// Reader loads extracted text documents from a local directory.
type Reader struct {
	ext string
}

// NewReader creates a Reader for *.txt files.
func NewReader() *Reader {
	return &Reader{ext: ".txt"}
}

// ReadDocuments returns every *.txt file directly under dir in filename order.
// Files that cannot be read or are not valid UTF-8 are logged and skipped.
// It fails with domain.ErrNoDocuments when nothing readable remains.
func (r *Reader) ReadDocuments(ctx context.Context, dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var docs []domain.Document
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), r.ext) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Printf("filesystem.Reader.ReadDocuments: failed to read %s: %v", e.Name(), err)
			continue
		}
		if !utf8.Valid(data) {
			log.Printf("filesystem.Reader.ReadDocuments: skipping %s: not valid UTF-8", e.Name())
			continue
		}

		docs = append(docs, domain.Document{Filename: e.Name(), Content: string(data)})
		log.Printf("filesystem.Reader.ReadDocuments: loaded %s (%d chars)", e.Name(), utf8.RuneCount(data))
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, domain.ErrNoDocuments)
	}
	return docs, nil
}
