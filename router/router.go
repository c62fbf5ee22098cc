package router

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

var (
	ErrInvalidLanguage    = errors.New("invalid language")
	ErrNoLanguageSelected = errors.New("no language selected")
)

// InvalidLanguageError reports a language code that is not in the table.
type InvalidLanguageError struct {
	Code LanguageCode
}

func (e *InvalidLanguageError) Error() string {
	return fmt.Sprintf("invalid language %q", string(e.Code))
}

func (e *InvalidLanguageError) Unwrap() error {
	return ErrInvalidLanguage
}

type LanguageCode string

const (
	Japanese LanguageCode = "JP"
	English  LanguageCode = "EN"
)

type DocumentDescriptor struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Icon  string `json:"icon" yaml:"icon"`
}

// PageSet is the ordered navigation for one language.
type PageSet []DocumentDescriptor

// Index returns the position of id in the page set or -1.
func (p PageSet) Index(id string) int {
	for i, d := range p {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Selection is the session scoped language choice. The zero value means
// nothing has been selected yet.
type Selection struct {
	code LanguageCode
}

func Selected(code LanguageCode) Selection {
	return Selection{code: code}
}

func (s Selection) Code() (LanguageCode, bool) {
	return s.code, s.code != ""
}

// Router maps language codes to page sets. It holds no mutable state and is
// safe for concurrent use.
type Router struct {
	table   *Table
	matcher language.Matcher
}

func New(table *Table) *Router {
	tags := make([]language.Tag, len(table.order))
	for i, code := range table.order {
		tags[i] = table.languages[code].tag
	}
	return &Router{
		table:   table,
		matcher: language.NewMatcher(tags),
	}
}

// SelectLanguage returns the page set for code.
func (r *Router) SelectLanguage(code LanguageCode) (PageSet, error) {
	lang, ok := r.table.languages[code]
	if !ok {
		return nil, &InvalidLanguageError{Code: code}
	}
	pages := make(PageSet, len(lang.pages))
	copy(pages, lang.pages)
	return pages, nil
}

// CurrentPageSet returns the page set for the most recent selection.
func (r *Router) CurrentPageSet(sel Selection) (PageSet, error) {
	code, ok := sel.Code()
	if !ok {
		return nil, ErrNoLanguageSelected
	}
	return r.SelectLanguage(code)
}

// Languages returns the supported codes in selector order.
func (r *Router) Languages() []LanguageCode {
	codes := make([]LanguageCode, len(r.table.order))
	copy(codes, r.table.order)
	return codes
}

func (r *Router) Default() LanguageCode {
	return r.table.defaultCode
}

// ParseLanguage accepts a code in any case, e.g. "jp".
func (r *Router) ParseLanguage(s string) (LanguageCode, error) {
	code := LanguageCode(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := r.table.languages[code]; !ok {
		return "", &InvalidLanguageError{Code: LanguageCode(s)}
	}
	return code, nil
}

// Negotiate picks the best supported language for an Accept-Language header
// and falls back to the default.
func (r *Router) Negotiate(acceptLanguage string) LanguageCode {
	if acceptLanguage == "" {
		return r.table.defaultCode
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return r.table.defaultCode
	}
	_, index, confidence := r.matcher.Match(tags...)
	if confidence == language.No {
		return r.table.defaultCode
	}
	return r.table.order[index]
}
