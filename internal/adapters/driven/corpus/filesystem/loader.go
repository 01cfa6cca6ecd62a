// Package filesystem provides a corpus loader that reads every regular
// file under a root directory.
package filesystem

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/custodia-labs/queryd/internal/core/domain"
	"github.com/custodia-labs/queryd/internal/core/ports/driven"
	"github.com/custodia-labs/queryd/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.CorpusLoader = (*Loader)(nil)

// Loader reads text documents from a directory tree.
type Loader struct {
	root string
}

// NewLoader creates a loader rooted at the given directory.
func NewLoader(root string) *Loader {
	return &Loader{root: root}
}

// Load walks the root recursively and reads every regular file as a
// document. Unreadable or non-UTF-8 files are logged and skipped; a
// missing or unreadable root logs a warning and yields an empty corpus.
// Walk order is deterministic (lexical within each directory).
func (l *Loader) Load(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document

	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == l.root {
				return err
			}
			logger.Warn("corpus: skipping %s: %v", path, err)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			logger.Debug("corpus: skipping non-regular file %s", path)
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("corpus: error loading document %s: %v", path, err)
			return nil
		}
		if !utf8.Valid(content) {
			logger.Warn("corpus: skipping %s: not valid UTF-8", path)
			return nil
		}

		docs = append(docs, domain.Document{Path: path, Content: string(content)})
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		// A failed walk at the root is not fatal: the service starts
		// with an empty corpus and answers without context.
		logger.Error("corpus: error walking directory %s: %v", l.root, err)
		return nil, nil
	}

	logger.Info("corpus: loaded %d documents from %s", len(docs), l.root)
	return docs, nil
}
