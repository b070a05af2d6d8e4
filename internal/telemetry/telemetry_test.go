package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("X-Platform", "Web")
	req.Header.Set("X-App-Version", "1.2.0")
	req.Header.Set("Accept-Language", "en-US")
	req.Header.Set("X-Session-Id", "abc")

	env := FromRequest(req)

	assert.Equal(t, "web", env.Platform)
	assert.Equal(t, "1.2.0", env.AppVersion)
	assert.Equal(t, "en-US", env.DeviceLocale)
	assert.Equal(t, "abc", env.SessionID)
}

func TestFromRequest_UnknownPlatform(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("X-Platform", "toaster")

	assert.Equal(t, "unknown", FromRequest(req).Platform)
}

func TestRecorder_Counts(t *testing.T) {
	rec := NewRecorder()
	env := Envelope{Platform: "web"}

	rec.Record("tasks_parsed", env)
	rec.Record("tasks_parsed", env)
	rec.Record("plan_generated", Envelope{Platform: "unknown"})

	counts := rec.Counts()
	assert.Equal(t, 2, counts["tasks_parsed"])
	assert.Equal(t, 2, counts["tasks_parsed.web"])
	assert.Equal(t, 1, counts["plan_generated"])
}

func TestStatsHandler(t *testing.T) {
	rec := NewRecorder()
	rec.Record("nudges_served", Envelope{Platform: "web"})

	recw := httptest.NewRecorder()
	StatsHandler(rec)(recw, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, recw.Code)
	assert.Contains(t, recw.Body.String(), "nudges_served")
}
