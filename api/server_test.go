package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foomo/devguide/content"
	"github.com/foomo/devguide/router"
	"github.com/foomo/devguide/service"
	"github.com/foomo/devguide/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type notification struct {
	sessionID string
	code      router.LanguageCode
	pages     router.PageSet
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []notification
}

func (n *recordingNotifier) Notify(sessionID string, code router.LanguageCode, pages router.PageSet) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification{sessionID, code, pages})
}

func newTestServer(t *testing.T) (*Server, *session.Store, *recordingNotifier) {
	t.Helper()
	r := router.New(router.DefaultTable())
	store := session.NewStore(r, 100, time.Hour)
	notifier := &recordingNotifier{}
	svc := service.NewService(zap.NewNop(), r, content.Embedded(), nil)
	return NewServer(zap.NewNop(), svc, store, notifier), store, notifier
}

func do(t *testing.T, srv http.Handler, method, path, body string, cookie *http.Cookie, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/healthz", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLanguages(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/languages", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[LanguagesResponse](t, rec)
	assert.Equal(t, []router.LanguageCode{router.English, router.Japanese}, resp.Languages)
	assert.Equal(t, router.Japanese, resp.Default)
}

func TestPagesDefaultsWithoutSelection(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/pages", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[PagesResponse](t, rec)
	assert.True(t, resp.Defaulted)
	assert.Equal(t, router.Japanese, resp.Language)
	assert.Equal(t, "introduction_jp", resp.Pages[0].ID)
	sessionCookie(t, rec)

	rec = do(t, srv, http.MethodGet, "/api/pages", "", nil, map[string]string{"Accept-Language": "en-US,en;q=0.9"})
	resp = decode[PagesResponse](t, rec)
	assert.True(t, resp.Defaulted)
	assert.Equal(t, router.English, resp.Language)
}

func TestSelectLanguage(t *testing.T) {
	srv, store, notifier := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/pages", "", nil, nil)
	cookie := sessionCookie(t, rec)

	rec = do(t, srv, http.MethodPut, "/api/language", `{"language":"en"}`, cookie, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[PagesResponse](t, rec)
	assert.Equal(t, router.English, resp.Language)
	assert.False(t, resp.Defaulted)
	assert.Equal(t, []string{"introduction_en", "handson_en", "tips_en"}, []string{resp.Pages[0].ID, resp.Pages[1].ID, resp.Pages[2].ID})

	rec = do(t, srv, http.MethodGet, "/api/pages", "", cookie, map[string]string{"Accept-Language": "ja"})
	resp = decode[PagesResponse](t, rec)
	assert.Equal(t, router.English, resp.Language)
	assert.False(t, resp.Defaulted)

	pages, err := store.Current(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "tips_en", pages[2].ID)

	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, cookie.Value, notifier.notifications[0].sessionID)
	assert.Equal(t, router.English, notifier.notifications[0].code)
	assert.Len(t, notifier.notifications[0].pages, 3)
}

func TestSelectLanguageInvalid(t *testing.T) {
	srv, _, notifier := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/language", `{"language":"JP"}`, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)

	rec = do(t, srv, http.MethodPut, "/api/language", `{"language":"FR"}`, cookie, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "invalid language")

	rec = do(t, srv, http.MethodPut, "/api/language", `{`, cookie, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/pages", "", cookie, nil)
	resp := decode[PagesResponse](t, rec)
	assert.Equal(t, router.Japanese, resp.Language)
	assert.Len(t, notifier.notifications, 1)
}

func TestExpiredSessionGetsNewCookie(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/pages", "", &http.Cookie{Name: session.CookieName, Value: "gone"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "gone", sessionCookie(t, rec).Value)
}

func TestDocument(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/language", `{"language":"EN"}`, nil, nil)
	cookie := sessionCookie(t, rec)

	rec = do(t, srv, http.MethodGet, "/api/documents/introduction_en", "", cookie, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[DocumentResponse](t, rec)
	assert.Equal(t, router.English, resp.Language)
	assert.Equal(t, "Introduction", resp.Document.DocumentSummary.Title)
	assert.Len(t, resp.Document.NextSiblings, 2)

	rec = do(t, srv, http.MethodGet, "/api/documents/introduction_jp", "", cookie, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentWithoutSelection(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/documents/tips_jp", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[DocumentResponse](t, rec)
	assert.Equal(t, router.Japanese, resp.Language)
	assert.Equal(t, "開発のコツ", resp.Document.DocumentSummary.Title)
}
