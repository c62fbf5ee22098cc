package router

import (
	"fmt"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Table is the immutable lookup table behind a Router.
type Table struct {
	languages   map[LanguageCode]*tableLanguage
	order       []LanguageCode
	defaultCode LanguageCode
}

type tableLanguage struct {
	tag   language.Tag
	pages PageSet
}

// TableLanguage describes one language in a table file.
type TableLanguage struct {
	Code  LanguageCode         `yaml:"code"`
	Tag   string               `yaml:"tag"`
	Pages []DocumentDescriptor `yaml:"pages"`
}

// TableFile is the yaml representation of a table. Languages are merged into
// the built-in table unless Replace is set.
type TableFile struct {
	Default   LanguageCode    `yaml:"default"`
	Replace   bool            `yaml:"replace"`
	Languages []TableLanguage `yaml:"languages"`
}

func builtinLanguages() []TableLanguage {
	return []TableLanguage{
		{
			Code: English,
			Tag:  "en",
			Pages: []DocumentDescriptor{
				{ID: "introduction_en", Title: "Introduction", Icon: ":material/home:"},
				{ID: "handson_en", Title: "Hands-On", Icon: ":material/build:"},
				{ID: "tips_en", Title: "Tips", Icon: ":material/lightbulb_2:"},
			},
		},
		{
			Code: Japanese,
			Tag:  "ja",
			Pages: []DocumentDescriptor{
				{ID: "introduction_jp", Title: "はじめに", Icon: ":material/home:"},
				{ID: "handson_jp", Title: "作ってみよう", Icon: ":material/build:"},
				{ID: "tips_jp", Title: "開発のコツ", Icon: ":material/lightbulb_2:"},
			},
		},
	}
}

// DefaultTable returns the built-in English/Japanese table with Japanese
// preselected.
func DefaultTable() *Table {
	t, err := NewTable(Japanese, builtinLanguages())
	if err != nil {
		panic(err)
	}
	return t
}

// NewTable validates languages and builds a table. Selector order follows
// the order of languages.
func NewTable(defaultCode LanguageCode, languages []TableLanguage) (*Table, error) {
	if len(languages) == 0 {
		return nil, fmt.Errorf("table has no languages")
	}
	t := &Table{
		languages:   make(map[LanguageCode]*tableLanguage, len(languages)),
		order:       make([]LanguageCode, 0, len(languages)),
		defaultCode: defaultCode,
	}
	ids := map[string]LanguageCode{}
	for _, l := range languages {
		if l.Code == "" {
			return nil, fmt.Errorf("language without code")
		}
		if _, ok := t.languages[l.Code]; ok {
			return nil, fmt.Errorf("language %s: duplicate code", l.Code)
		}
		tag, err := language.Parse(l.Tag)
		if err != nil {
			return nil, fmt.Errorf("language %s: invalid tag %q: %w", l.Code, l.Tag, err)
		}
		if len(l.Pages) == 0 {
			return nil, fmt.Errorf("language %s: no pages", l.Code)
		}
		pages := make(PageSet, len(l.Pages))
		for i, p := range l.Pages {
			if p.ID == "" {
				return nil, fmt.Errorf("language %s: page %d has no id", l.Code, i)
			}
			if p.Title == "" {
				return nil, fmt.Errorf("language %s: page %s has no title", l.Code, p.ID)
			}
			if other, ok := ids[p.ID]; ok {
				return nil, fmt.Errorf("language %s: page id %s already used by %s", l.Code, p.ID, other)
			}
			ids[p.ID] = l.Code
			pages[i] = p
		}
		t.languages[l.Code] = &tableLanguage{tag: tag, pages: pages}
		t.order = append(t.order, l.Code)
	}
	if _, ok := t.languages[defaultCode]; !ok {
		return nil, fmt.Errorf("default language %q is not in the table", defaultCode)
	}
	return t, nil
}

// LoadTable parses a yaml table file.
func LoadTable(data []byte) (*Table, error) {
	var file TableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse table: %w", err)
	}

	var languages []TableLanguage
	if !file.Replace {
		languages = builtinLanguages()
	}
	for _, l := range file.Languages {
		replaced := false
		for i := range languages {
			if languages[i].Code == l.Code {
				languages[i] = l
				replaced = true
				break
			}
		}
		if !replaced {
			languages = append(languages, l)
		}
	}

	defaultCode := file.Default
	if defaultCode == "" {
		defaultCode = Japanese
	}
	return NewTable(defaultCode, languages)
}

func LoadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table file: %w", err)
	}
	return LoadTable(data)
}
