package content

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/foomo/devguide/scrape"
	"github.com/foomo/devguide/service/vo"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("content not found")

//go:embed docs
var docs embed.FS

// Store resolves a document identifier to its markdown body and the metadata
// the content carries. The summary is never nil; its fields are empty when
// the content has no metadata.
type Store interface {
	Get(ctx context.Context, id string) (*vo.ContentSummary, vo.Markdown, error)
}

// FSStore reads <id>.md or <id>.html from a filesystem. Markdown files may
// start with a YAML front matter block, HTML bodies are converted to markdown
// and their meta tags kept.
type FSStore struct {
	fsys fs.FS
}

func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{fsys: fsys}
}

// Embedded returns the store over the documents compiled into the binary.
func Embedded() *FSStore {
	sub, err := fs.Sub(docs, "docs")
	if err != nil {
		panic(err)
	}
	return NewFSStore(sub)
}

func (s *FSStore) Get(ctx context.Context, id string) (*vo.ContentSummary, vo.Markdown, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if !validID(id) {
		return nil, "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	data, err := fs.ReadFile(s.fsys, id+".md")
	if err == nil {
		summary, markdown, err := splitFrontMatter(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read front matter of %s: %w", id, err)
		}
		return summary, markdown, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("failed to read %s: %w", id, err)
	}

	data, err = fs.ReadFile(s.fsys, id+".html")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", id, err)
	}
	summary, markdown, err := scrape.Convert(data, "")
	if err != nil {
		return nil, "", fmt.Errorf("failed to convert %s: %w", id, err)
	}
	return &summary.ContentSummary, markdown, nil
}

const frontMatterDelimiter = "---"

// splitFrontMatter separates a leading YAML block fenced by "---" lines from
// the markdown body.
func splitFrontMatter(data []byte) (*vo.ContentSummary, vo.Markdown, error) {
	summary := &vo.ContentSummary{}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, frontMatterDelimiter+"\n") {
		return summary, vo.Markdown(data), nil
	}
	rest := text[len(frontMatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontMatterDelimiter+"\n")
	if end < 0 {
		return summary, vo.Markdown(data), nil
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), summary); err != nil {
		return nil, "", err
	}
	body := strings.TrimLeft(rest[end+len(frontMatterDelimiter)+2:], "\n")
	return summary, vo.Markdown(body), nil
}

// HTTPStore scrapes documents from a published site, one page per identifier.
type HTTPStore struct {
	client   *http.Client
	baseURL  string
	selector string
}

func NewHTTPStore(client *http.Client, baseURL, selector string) *HTTPStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		selector: selector,
	}
}

func (s *HTTPStore) Get(ctx context.Context, id string) (*vo.ContentSummary, vo.Markdown, error) {
	if !validID(id) {
		return nil, "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	summary, markdown, err := scrape.Scrape(ctx, s.client, s.baseURL+"/"+url.PathEscape(id), s.selector)
	var statusErr *scrape.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, "", err
	}
	return &summary.ContentSummary, markdown, nil
}

// identifiers are flat names, never paths
func validID(id string) bool {
	return id != "" && fs.ValidPath(id) && !strings.ContainsAny(id, `/\`)
}
