package router

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frenchTable = `
default: EN
languages:
  - code: FR
    tag: fr
    pages:
      - id: introduction_fr
        title: Introduction
        icon: ":material/home:"
      - id: handson_fr
        title: Pratique
        icon: ":material/build:"
`

func TestLoadTableExtendsBuiltins(t *testing.T) {
	table, err := LoadTable([]byte(frenchTable))
	require.NoError(t, err)

	r := New(table)
	assert.Equal(t, []LanguageCode{English, Japanese, "FR"}, r.Languages())
	assert.Equal(t, English, r.Default())

	pages, err := r.SelectLanguage("FR")
	require.NoError(t, err)
	assert.Equal(t, "handson_fr", pages[1].ID)

	jp, err := r.SelectLanguage(Japanese)
	require.NoError(t, err)
	assert.Equal(t, "はじめに", jp[0].Title)

	assert.Equal(t, LanguageCode("FR"), r.Negotiate("fr-CA"))
}

func TestLoadTableOverridesLanguage(t *testing.T) {
	table, err := LoadTable([]byte(`
languages:
  - code: EN
    tag: en
    pages:
      - id: tips_en
        title: Tips first
`))
	require.NoError(t, err)

	pages, err := New(table).SelectLanguage(English)
	require.NoError(t, err)
	assert.Equal(t, PageSet{{ID: "tips_en", Title: "Tips first"}}, pages)
}

func TestLoadTableReplace(t *testing.T) {
	table, err := LoadTable([]byte("replace: true\n" + frenchTable))
	require.NoError(t, err)

	r := New(table)
	assert.Equal(t, []LanguageCode{"FR"}, r.Languages())
	_, err = r.SelectLanguage(Japanese)
	assert.ErrorIs(t, err, ErrInvalidLanguage)
}

func TestLoadTableValidation(t *testing.T) {
	tests := map[string]string{
		"syntax":        "languages: [",
		"missing default": `
replace: true
languages:
  - code: FR
    tag: fr
    pages:
      - id: a
        title: A
`,
		"bad tag": `
languages:
  - code: XX
    tag: "!!"
    pages:
      - id: a
        title: A
`,
		"no pages": `
languages:
  - code: FR
    tag: fr
`,
		"duplicate id": `
languages:
  - code: FR
    tag: fr
    pages:
      - id: tips_en
        title: Astuces
`,
		"empty title": `
languages:
  - code: FR
    tag: fr
    pages:
      - id: a
`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadTable([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte(frenchTable), 0o600))

	table, err := LoadTableFile(path)
	require.NoError(t, err)
	assert.Len(t, New(table).Languages(), 3)

	_, err = LoadTableFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
