package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LanguageSelected("JP")
	m.LanguageSelected("JP")
	m.LanguageSelected("EN")
	m.InvalidLanguage()
	m.DocumentRead("EN", nil)
	m.DocumentRead("EN", errors.New("boom"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.selections.WithLabelValues("JP")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.selections.WithLabelValues("EN")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.invalid), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.documentReads.WithLabelValues("EN", "error")), 0)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `devguide_language_selections_total{language="JP"} 2`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.LanguageSelected("JP")
	m.InvalidLanguage()
	m.DocumentRead("JP", nil)
}
