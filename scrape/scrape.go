package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/foomo/devguide/service/vo"
	"golang.org/x/net/html"
)

// Scrape downloads url and converts the node matching selector to markdown.
func Scrape(ctx context.Context, client *http.Client, url, selector string) (*vo.DocumentSummary, vo.Markdown, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download HTML: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return Convert(body, selector)
}

// Convert parses an HTML document or fragment and converts the node matching
// selector to markdown. An empty selector converts the whole document.
func Convert(body []byte, selector string) (*vo.DocumentSummary, vo.Markdown, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	selectedNode := doc
	if selector != "" {
		selectedNode, err = extractNodeBySelector(doc, selector)
		if err != nil {
			return nil, "", fmt.Errorf("failed to extract node with selector '%s': %w", selector, err)
		}
	}

	markdownBytes, err := htmltomarkdown.ConvertNode(selectedNode)
	if err != nil {
		return nil, "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}

	summary := &vo.DocumentSummary{
		ContentSummary: vo.ContentSummary{
			Title:       extractTitle(doc),
			Description: extractMetaDescription(doc),
			Keywords:    extractMetaKeywords(doc),
		},
	}
	return summary, vo.Markdown(markdownBytes), nil
}

// StatusError is returned when the remote site answers with a non 200 status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP request for %s failed with status: %d", e.URL, e.StatusCode)
}
