package telemetry

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
)

// Envelope is what we attach to every recorded event. Backend-trustable
// fields only.
type Envelope struct {
	SessionID    string `json:"session_id,omitempty"`
	Platform     string `json:"platform"`
	AppVersion   string `json:"app_version,omitempty"`
	DeviceLocale string `json:"device_locale,omitempty"`
}

// FromRequest extracts envelope fields from request headers.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "ios", "android", "web":
	default:
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	return Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

// Recorder counts events in memory. Counters reset with the process; event
// history is never persisted.
type Recorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewRecorder() *Recorder {
	return &Recorder{counts: make(map[string]int)}
}

// Record bumps the counter for an event, split by platform.
func (rec *Recorder) Record(event string, env Envelope) {
	rec.mu.Lock()
	rec.counts[event]++
	rec.counts[event+"."+env.Platform]++
	rec.mu.Unlock()
}

// Counts returns a sorted copy of the counters.
func (rec *Recorder) Counts() map[string]int {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	out := make(map[string]int, len(rec.counts))
	for k, v := range rec.counts {
		out[k] = v
	}
	return out
}

// StatsHandler dumps counters as JSON. GET /stats.
func StatsHandler(rec *Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"events": rec.Counts()})
	}
}
