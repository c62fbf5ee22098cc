package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/foomo/devguide/content"
	"github.com/foomo/devguide/metrics"
	"github.com/foomo/devguide/router"
	"github.com/foomo/devguide/service/vo"
	"go.uber.org/zap"
)

var ErrDocumentNotInPageSet = errors.New("document is not part of the page set")

type Service interface {
	Router() *router.Router
	Pages(ctx context.Context, code router.LanguageCode) (router.PageSet, error)
	GetDocument(ctx context.Context, code router.LanguageCode, id string) (*vo.Document, error)
}

type service struct {
	logger  *zap.Logger
	router  *router.Router
	store   content.Store
	metrics *metrics.Metrics
}

func NewService(logger *zap.Logger, r *router.Router, store content.Store, m *metrics.Metrics) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		logger:  logger,
		router:  r,
		store:   store,
		metrics: m,
	}
}

func (s *service) Router() *router.Router {
	return s.router
}

func (s *service) Pages(ctx context.Context, code router.LanguageCode) (router.PageSet, error) {
	pages, err := s.router.SelectLanguage(code)
	if err != nil {
		s.metrics.InvalidLanguage()
		return nil, err
	}
	s.metrics.LanguageSelected(string(code))
	return pages, nil
}

// GetDocument loads id from the content store and places it in the
// navigation of code's page set.
func (s *service) GetDocument(ctx context.Context, code router.LanguageCode, id string) (*vo.Document, error) {
	doc, err := s.getDocument(ctx, code, id)
	if !errors.Is(err, router.ErrInvalidLanguage) {
		s.metrics.DocumentRead(string(code), err)
	}
	if err != nil {
		s.logger.Debug("document lookup failed", zap.String("language", string(code)), zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return doc, nil
}

func (s *service) getDocument(ctx context.Context, code router.LanguageCode, id string) (*vo.Document, error) {
	pages, err := s.router.SelectLanguage(code)
	if err != nil {
		return nil, err
	}
	index := pages.Index(id)
	if index < 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrDocumentNotInPageSet, id, code)
	}

	meta, markdown, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", id, err)
	}
	outline := content.ParseOutline(markdown)

	// title and icon belong to the navigation, the rest to the content
	summary := summarize(code, pages[index])
	summary.Description = outline.Description
	if meta != nil {
		if meta.Description != "" {
			summary.Description = meta.Description
		}
		summary.Keywords = meta.Keywords
	}
	doc := &vo.Document{
		DocumentSummary: summary,
		Markdown:        markdown,
		Sections:        outline.Sections,
	}
	for i, page := range pages {
		switch {
		case i < index:
			doc.PrevSiblings = append(doc.PrevSiblings, summarize(code, page))
		case i > index:
			doc.NextSiblings = append(doc.NextSiblings, summarize(code, page))
		}
	}
	return doc, nil
}

func summarize(code router.LanguageCode, d router.DocumentDescriptor) vo.DocumentSummary {
	return vo.DocumentSummary{
		ID:       d.ID,
		Icon:     d.Icon,
		Language: vo.Language(code),
		ContentSummary: vo.ContentSummary{
			Title: d.Title,
		},
	}
}
