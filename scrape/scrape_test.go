package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html>
<head>
  <title>Development Tips</title>
  <meta name="description" content="Practical advice for small web apps.">
  <meta name="keywords" content="git, uv , , streamlit">
</head>
<body>
  <nav id="sidebar"><a href="/">Home</a></nav>
  <main class="content wide">
    <h1>Development Tips</h1>
    <p>Don't start with the <strong>UI</strong>.</p>
  </main>
</body>
</html>`

func TestScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tips_en" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	summary, md, err := Scrape(context.Background(), srv.Client(), srv.URL+"/tips_en", "main")
	require.NoError(t, err)
	assert.Equal(t, "Development Tips", summary.Title)
	assert.Equal(t, "Practical advice for small web apps.", summary.Description)
	assert.Equal(t, []string{"git", "uv", "streamlit"}, summary.Keywords)
	assert.Contains(t, string(md), "# Development Tips")
	assert.Contains(t, string(md), "**UI**")
	assert.NotContains(t, string(md), "Home")

	_, _, err = Scrape(context.Background(), srv.Client(), srv.URL+"/missing", "main")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestConvertSelectors(t *testing.T) {
	tests := []struct {
		selector string
		contains string
		wantErr  bool
	}{
		{selector: "#sidebar", contains: "Home"},
		{selector: ".wide", contains: "Development Tips"},
		{selector: "main", contains: "Development Tips"},
		{selector: "", contains: "Home"},
		{selector: ".cont", wantErr: true},
		{selector: "article", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			_, md, err := Convert([]byte(page), tt.selector)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, string(md), tt.contains)
		})
	}
}

func TestConvertFragment(t *testing.T) {
	summary, md, err := Convert([]byte(`<h2>Upload to GitHub</h2><ol><li>Create a repository</li></ol>`), "")
	require.NoError(t, err)
	assert.Empty(t, summary.Title)
	assert.Contains(t, string(md), "## Upload to GitHub")
	assert.Contains(t, string(md), "1. Create a repository")
}
