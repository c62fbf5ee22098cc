package vo

type Markdown string

type Language string

type ContentSummary struct {
	Title       string   `json:"title" yaml:"title"`                                 // Page title
	Description string   `json:"description,omitempty" yaml:"description,omitempty"` // Meta description or first paragraph of the page
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`       // Keywords
}

type DocumentSummary struct {
	ID             string   `json:"id"`                 // Document identifier
	Icon           string   `json:"icon,omitempty"`     // Navigation icon
	Language       Language `json:"language,omitempty"` // Language the summary was resolved for
	ContentSummary `json:"contentSummary"`
}

type Section struct {
	Title  string `json:"title"`
	Anchor string `json:"anchor,omitempty"`
}

type Document struct {
	DocumentSummary DocumentSummary `json:"summary"`
	Markdown        Markdown        `json:"markdown,omitempty"` // Full content in markdown
	Sections        []Section       `json:"sections,omitempty"` // Second level headings in order

	PrevSiblings []DocumentSummary `json:"prev,omitempty"` // Pages before this one
	NextSiblings []DocumentSummary `json:"next,omitempty"` // Pages after this one
}
