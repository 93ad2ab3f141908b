// Package filesystem loads documents from the local filesystem and
// watches directories for new material. Paths may be given bare or as
// file:// URIs.
package filesystem

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/logger"
)

// fallbackMIMETypes covers extensions the platform MIME database
// commonly lacks or reports inconsistently.
var fallbackMIMETypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".csv":      "text/csv",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".ts":       "text/typescript",
	".tsx":      "text/typescript-jsx",
	".jsx":      "text/javascript-jsx",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".sh":       "text/x-shellscript",
	".bash":     "text/x-shellscript",
	".sql":      "text/x-sql",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Load reads a single file into a raw document. The path may be bare
// or a file:// URI; relative paths are resolved against the working
// directory. Title is left empty so extractors can derive one.
func Load(path string) (*domain.RawDocument, error) {
	path = strings.TrimPrefix(path, "file://")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s does not exist", abs)
		}
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", abs)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}

	return &domain.RawDocument{
		URI:        abs,
		MIMEType:   detectMIMEType(abs),
		Content:    content,
		SourceKind: domain.SourceFile,
	}, nil
}

// Scan walks the directory tree rooted at root and loads every visible
// file. Hidden files and directories are skipped. The errors channel
// carries at most one error; both channels close when the walk finishes
// or the context is cancelled.
func Scan(ctx context.Context, root string) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				errs <- fmt.Errorf("%s does not exist", root)
				return
			}
			errs <- fmt.Errorf("stat %s: %w", root, err)
			return
		}
		if !info.IsDir() {
			errs <- fmt.Errorf("%s is not a directory", root)
			return
		}

		walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			if rel != "." && isHidden(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			raw, loadErr := Load(path)
			if loadErr != nil {
				logger.Warn("Skipping %s: %v", path, loadErr)
				return nil
			}

			select {
			case docs <- *raw:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if walkErr != nil && ctx.Err() == nil {
			errs <- walkErr
		}
	}()

	return docs, errs
}

// detectMIMEType resolves a file's MIME type from its extension.
// Extensionless files are assumed to be plain text.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}

	if mt, ok := fallbackMIMETypes[ext]; ok {
		return mt
	}

	mt := mime.TypeByExtension(ext)
	if mt == "" {
		return "application/octet-stream"
	}
	// Strip parameters such as charset.
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

// isHidden reports whether any component of path starts with a dot.
// "." and ".." are path syntax, not hidden names.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		switch part {
		case "", ".", "..":
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
