package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/foomo/devguide/content"
	"github.com/foomo/devguide/router"
	"github.com/foomo/devguide/service"
	"github.com/foomo/devguide/service/vo"
	"github.com/foomo/devguide/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Notifier is told when a session switched language.
type Notifier interface {
	Notify(sessionID string, code router.LanguageCode, pages router.PageSet)
}

type LanguagesResponse struct {
	Languages []router.LanguageCode `json:"languages"`
	Default   router.LanguageCode   `json:"default"`
}

type PagesResponse struct {
	Language  router.LanguageCode `json:"language"`
	Pages     router.PageSet      `json:"pages"`
	Defaulted bool                `json:"defaulted,omitempty"` // nothing selected yet, language was negotiated
}

type SelectLanguageRequest struct {
	Language string `json:"language"`
}

type DocumentResponse struct {
	Language router.LanguageCode `json:"language"`
	Document *vo.Document        `json:"document"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Server is the JSON API a rendering host talks to.
type Server struct {
	logger   *zap.Logger
	service  service.Service
	sessions *session.Store
	notifier Notifier
	router   chi.Router
}

func NewServer(logger *zap.Logger, svc service.Service, sessions *session.Store, notifier Notifier) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:   logger,
		service:  svc,
		sessions: sessions,
		notifier: notifier,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/languages", s.handleLanguages)
		r.Get("/pages", s.handlePages)
		r.Put("/language", s.handleSelectLanguage)
		r.Get("/documents/{id}", s.handleDocument)
	})
	s.router = r
	return s
}

// ServeHTTP implements the http.Handler interface, delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestID", middleware.GetReqID(r.Context())),
		)
	})
}

// currentSession returns the caller's session and creates one when the cookie is
// missing or the session expired.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) session.Session {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if sess, ok := s.sessions.Get(cookie.Value); ok {
			return sess
		}
	}
	sess := s.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// language resolves the session's selection, falling back to the language
// negotiated from Accept-Language.
func (s *Server) language(r *http.Request, sess session.Session) router.LanguageCode {
	if code, ok := sess.Selection.Code(); ok {
		return code
	}
	return s.service.Router().Negotiate(r.Header.Get("Accept-Language"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	rt := s.service.Router()
	writeJSON(w, http.StatusOK, LanguagesResponse{
		Languages: rt.Languages(),
		Default:   rt.Default(),
	})
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(w, r)
	pages, err := s.sessions.Current(sess.ID)
	if err == nil {
		code, _ := sess.Selection.Code()
		writeJSON(w, http.StatusOK, PagesResponse{Language: code, Pages: pages})
		return
	}
	if !errors.Is(err, router.ErrNoLanguageSelected) {
		s.writeError(w, err)
		return
	}

	code := s.language(r, sess)
	pages, err = s.service.Pages(r.Context(), code)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PagesResponse{Language: code, Pages: pages, Defaulted: true})
}

func (s *Server) handleSelectLanguage(w http.ResponseWriter, r *http.Request) {
	var req SelectLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
		return
	}

	sess := s.currentSession(w, r)
	code, err := s.service.Router().ParseLanguage(req.Language)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.service.Pages(r.Context(), code); err != nil {
		s.writeError(w, err)
		return
	}
	pages, err := s.sessions.Select(sess.ID, code)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("language selected", zap.String("sessionID", sess.ID), zap.String("language", string(code)))
	if s.notifier != nil {
		s.notifier.Notify(sess.ID, code, pages)
	}
	writeJSON(w, http.StatusOK, PagesResponse{Language: code, Pages: pages})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(w, r)
	code := s.language(r, sess)

	doc, err := s.service.GetDocument(r.Context(), code, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Language: code, Document: doc})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, router.ErrInvalidLanguage):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrDocumentNotInPageSet),
		errors.Is(err, content.ErrNotFound),
		errors.Is(err, session.ErrSessionNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
