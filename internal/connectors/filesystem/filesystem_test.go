package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

func TestLoad(t *testing.T) {
	t.Run("loads file with detected MIME type", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "counsel-load-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		path := filepath.Join(tempDir, "brief.md")
		require.NoError(t, os.WriteFile(path, []byte("# Motion to Dismiss"), 0644))

		raw, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, path, raw.URI)
		assert.Equal(t, "text/markdown", raw.MIMEType)
		assert.Equal(t, []byte("# Motion to Dismiss"), raw.Content)
		assert.Equal(t, domain.SourceFile, raw.SourceKind)
		assert.Empty(t, raw.Title, "title derivation belongs to extractors")
	})

	t.Run("strips file scheme", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "counsel-load-uri-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		path := filepath.Join(tempDir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("notes"), 0644))

		raw, err := Load("file://" + path)

		require.NoError(t, err)
		assert.Equal(t, path, raw.URI)
		assert.Equal(t, "text/plain", raw.MIMEType)
	})

	t.Run("resolves relative paths", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "counsel-load-rel-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "clause.txt"), []byte("x"), 0644))

		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(tempDir))
		defer os.Chdir(wd)

		raw, err := Load("clause.txt")

		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(raw.URI))
		assert.Equal(t, "clause.txt", filepath.Base(raw.URI))
	})

	t.Run("missing file", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "counsel-load-missing-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		_, err = Load(filepath.Join(tempDir, "absent.txt"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("directory is rejected", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "counsel-load-dir-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		_, err = Load(tempDir)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})
}

func TestScan(t *testing.T) {
	t.Run("emits every visible file", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "counsel-scan-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		nested := filepath.Join(tempDir, "exhibits", "appendix")
		require.NoError(t, os.MkdirAll(nested, 0755))

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "contract.txt"), []byte("c"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "exhibits", "exhibit-a.md"), []byte("a"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(nested, "appendix-1.txt"), []byte("1"), 0644))

		docs, errs := Scan(context.Background(), tempDir)

		var got []domain.RawDocument
		for doc := range docs {
			got = append(got, doc)
		}
		for err := range errs {
			t.Fatalf("unexpected error: %v", err)
		}

		assert.Len(t, got, 3)
		for _, doc := range got {
			assert.Equal(t, domain.SourceFile, doc.SourceKind)
			assert.NotEmpty(t, doc.Content)
		}
	})

	t.Run("skips hidden files and directories", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "counsel-scan-hidden-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		hiddenDir := filepath.Join(tempDir, ".archive")
		require.NoError(t, os.Mkdir(hiddenDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(hiddenDir, "old.txt"), []byte("old"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".draft.txt"), []byte("draft"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "filed.txt"), []byte("filed"), 0644))

		docs, errs := Scan(context.Background(), tempDir)

		var got []domain.RawDocument
		for doc := range docs {
			got = append(got, doc)
		}
		for range errs {
		}

		require.Len(t, got, 1)
		assert.Equal(t, "filed.txt", filepath.Base(got[0].URI))
	})

	t.Run("hidden root is not exempt from its own contents", func(t *testing.T) {
		// Scanning a visible dir that CONTAINS dotted entries skips
		// them; the root path itself may live anywhere.
		tempDir, err := os.MkdirTemp("", "counsel-scan-root-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		dotRoot := filepath.Join(tempDir, ".counsel-drop")
		require.NoError(t, os.Mkdir(dotRoot, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dotRoot, "inbox.txt"), []byte("in"), 0644))

		docs, errs := Scan(context.Background(), dotRoot)

		var got []domain.RawDocument
		for doc := range docs {
			got = append(got, doc)
		}
		for range errs {
		}

		assert.Len(t, got, 1, "files under a dotted root are visible relative to it")
	})

	t.Run("missing directory", func(t *testing.T) {
		docs, errs := Scan(context.Background(), "/non/existent/path")

		for range docs {
		}

		select {
		case err := <-errs:
			require.Error(t, err)
			assert.Contains(t, err.Error(), "does not exist")
		case <-time.After(time.Second):
			t.Fatal("expected error for missing directory")
		}
	})

	t.Run("path is a file", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "counsel-scan-file-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		path := filepath.Join(tempDir, "single.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		docs, errs := Scan(context.Background(), path)

		for range docs {
		}

		select {
		case err := <-errs:
			require.Error(t, err)
			assert.Contains(t, err.Error(), "is not a directory")
		case <-time.After(time.Second):
			t.Fatal("expected error for file path")
		}
	})

	t.Run("cancelled context stops the walk", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "counsel-scan-cancel-*")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		for i := 0; i < 50; i++ {
			name := filepath.Join(tempDir, fmt.Sprintf("doc%02d.txt", i))
			require.NoError(t, os.WriteFile(name, []byte("content"), 0644))
		}

		ctx, cancel := context.WithCancel(context.Background())
		docs, errs := Scan(ctx, tempDir)

		// Take one document, then cancel.
		<-docs
		cancel()

		count := 0
		for range docs {
			count++
		}
		for range errs {
		}

		assert.Less(t, count, 50, "walk should stop early")
	})
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		// No extension is assumed to be text.
		{"LICENSE", "text/plain"},
		{"deposition", "text/plain"},

		// Fallback table.
		{"brief.md", "text/markdown"},
		{"brief.markdown", "text/markdown"},
		{"notes.txt", "text/plain"},
		{"docket.csv", "text/csv"},
		{"config.yaml", "text/yaml"},
		{"config.yml", "text/yaml"},
		{"config.toml", "text/toml"},
		{"main.go", "text/x-go"},
		{"script.py", "text/x-python"},
		{"query.sql", "text/x-sql"},
		{"run.sh", "text/x-shellscript"},

		// Platform MIME database.
		{"filing.pdf", "application/pdf"},
		{"page.html", "text/html"},
		{"data.json", "application/json"},
		{"seal.png", "image/png"},

		// Unknown extensions.
		{"blob.zzzunknown", "application/octet-stream"},

		// Case-insensitive.
		{"BRIEF.MD", "text/markdown"},
		{"Filing.PDF", "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, detectMIMEType(tt.filename))
		})
	}

	t.Run("strips charset parameters", func(t *testing.T) {
		for _, name := range []string{"page.html", "style.css", "app.js"} {
			mt := detectMIMEType(name)
			assert.NotContains(t, mt, ";")
			assert.NotContains(t, mt, "charset")
		}
	})
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{".git/config", true},
		{"a/.b/c.txt", true},
		{".config/.cache/data", true},

		{"file.txt", false},
		{"path/to/file.txt", false},
		{"file.hidden", false},
		{"directory.name/file", false},

		// Path syntax, not hidden names.
		{".", false},
		{"..", false},
		{"path/./file", false},
		{"path/../file", false},
		{"", false},
		{"/", false},
	}

	for _, tt := range tests {
		name := tt.path
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, isHidden(tt.path))
		})
	}
}
