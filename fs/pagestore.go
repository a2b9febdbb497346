// Package fs exports crawled pages as markdown files.
package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/sitecrawl"
	"gopkg.in/yaml.v3"
)

// Ensure FileStore implements sitecrawl.PageExporter at compile time.
var _ sitecrawl.PageExporter = (*FileStore)(nil)

// FileStore writes pages with atomic update semantics. Pages are saved to a
// temporary directory, then moved into place on Commit.
type FileStore struct {
	baseDir string
	name    string
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// ExportPages implements sitecrawl.PageExporter. The output directory is
// replaced only when at least one page was written; on failure it is left
// untouched.
func (s *FileStore) ExportPages(ctx context.Context, result *sitecrawl.Result) (int, error) {
	if err := s.Abort(); err != nil {
		return 0, err
	}

	n := 0
	for _, rec := range result.Records {
		page, ok := rec.(sitecrawl.PageRecord)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			_ = s.Abort()
			return 0, err
		}
		if err := s.Save(page, result.FinishedAt); err != nil {
			_ = s.Abort()
			return 0, err
		}
		n++
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// Save writes one page into the temporary directory.
func (s *FileStore) Save(page sitecrawl.PageRecord, crawled time.Time) error {
	relPath, err := URLToPath(page.URL)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return err
	}

	content, err := FormatPage(page, crawled)
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(content), 0o644)
}

// Commit replaces the output directory with the saved pages.
func (s *FileStore) Commit() error {
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards saved pages.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// URLToPath converts a page URL to a relative file path.
// Example: https://example.com/docs/api/users → docs/api/users.md
// Query strings are ignored, so query variants of one path share a file.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", sitecrawl.Errorf(sitecrawl.EINVALID, "invalid page URL %q: %v", rawURL, err)
	}

	p := u.Path
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return "", sitecrawl.Errorf(sitecrawl.EINVALID, "path traversal in page URL %q", rawURL)
		}
	}

	if p == "" || p == "/" {
		return "index.md", nil
	}
	p = strings.TrimPrefix(p, "/")
	if strings.HasSuffix(p, "/") {
		return filepath.FromSlash(p + "index.md"), nil
	}
	return filepath.FromSlash(p + ".md"), nil
}

type frontmatter struct {
	Source      string `yaml:"source"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
	Crawled     string `yaml:"crawled"`
	Words       int    `yaml:"words"`
	Hash        string `yaml:"hash,omitempty"`
}

// FormatPage renders a page with YAML frontmatter. The body is the markdown
// rendering when present, else the plain content text.
func FormatPage(page sitecrawl.PageRecord, crawled time.Time) (string, error) {
	meta, err := yaml.Marshal(frontmatter{
		Source:      page.URL,
		Title:       page.Title,
		Description: page.Description,
		Crawled:     crawled.Format("2006-01-02"),
		Words:       page.WordCount,
		Hash:        page.ContentHash,
	})
	if err != nil {
		return "", sitecrawl.Errorf(sitecrawl.EINTERNAL, "failed to encode frontmatter: %v", err)
	}

	body := page.ContentMarkdown
	if body == "" {
		body = page.ContentText
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}
