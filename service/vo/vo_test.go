package vo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument(t *testing.T) {
	doc := Document{
		DocumentSummary: DocumentSummary{
			ID:       "handson_en",
			Icon:     ":material/build:",
			Language: "EN",
			ContentSummary: ContentSummary{
				Title:       "Hands-On",
				Description: "Set up a local environment, push it to GitHub and publish it.",
			},
		},
		Markdown: "# Let's Build Something Right Away\n\n## Development Environment\n",
		Sections: []Section{
			{Title: "Development Environment", Anchor: "development-environment"},
		},
		PrevSiblings: []DocumentSummary{
			{ID: "introduction_en", ContentSummary: ContentSummary{Title: "Introduction"}},
		},
		NextSiblings: []DocumentSummary{
			{ID: "tips_en", ContentSummary: ContentSummary{Title: "Tips"}},
		},
	}

	jsonData, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(jsonData, &raw))
	assert.Contains(t, raw, "summary")
	assert.Contains(t, raw, "prev")
	assert.Contains(t, raw, "next")

	summary := raw["summary"].(map[string]any)
	assert.Equal(t, "handson_en", summary["id"])
	assert.Equal(t, "Hands-On", summary["contentSummary"].(map[string]any)["title"])
}

func TestDocumentOmitsEmptyNavigation(t *testing.T) {
	jsonData, err := json.Marshal(Document{DocumentSummary: DocumentSummary{ID: "tips_jp"}})
	require.NoError(t, err)
	assert.NotContains(t, string(jsonData), `"prev"`)
	assert.NotContains(t, string(jsonData), `"next"`)
	assert.NotContains(t, string(jsonData), `"markdown"`)
}
