package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbrain-backend/internal/ai"
	"taskbrain-backend/internal/config"
	"taskbrain-backend/internal/planner"
	"taskbrain-backend/internal/session"
	"taskbrain-backend/internal/tasks"
	"taskbrain-backend/internal/telemetry"
)

const sampleInput = "Finish client proposal | 90 | 2025-11-25 | high value\n" +
	"Fix payment bug | 60 | 2025-11-23 | urgent\n" +
	"Write blog post | 120 | 2025-12-01 | marketing\n" +
	"Prepare slides | 150 | 2025-11-29 | investor"

type fixture struct {
	h       *Handler
	store   *session.Store
	session string
}

// newFixture wires a handler against a stub inference server. status/body
// control what the model path returns; a 500 forces the deterministic
// fallback everywhere.
func newFixture(t *testing.T, status int, body string) fixture {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		HFToken:              "test-token",
		DayStart:             "09:00",
		DayEnd:               "17:00",
		FocusMinutes:         50,
		DefaultBudgetMinutes: 480,
	}

	store := session.NewStore()
	h := NewHandler(cfg, ai.New("test-token", "m", srv.URL, time.Second), store, telemetry.NewRecorder())
	h.now = func() time.Time { return time.Date(2025, 11, 18, 10, 0, 0, 0, time.UTC) }

	return fixture{h: h, store: store, session: store.Create()}
}

func (f fixture) do(handler http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(session.ContextWithID(req.Context(), f.session))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func (f fixture) parseAndPrioritize(t *testing.T) {
	t.Helper()
	rec := f.do(f.h.ParseTasks(), http.MethodPost, "/tasks/parse", `{"raw_text":"`+strings.ReplaceAll(sampleInput, "\n", `\n`)+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(f.h.Prioritize(), http.MethodPost, "/tasks/prioritize", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestParseTasks_ReportsPerLineErrors(t *testing.T) {
	f := newFixture(t, 500, "boom")

	rec := f.do(f.h.ParseTasks(), http.MethodPost, "/tasks/parse",
		`{"raw_text":"Fix bug | -10 | 2025-11-23 | urgent\nShip feature | 45"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Tasks  []tasks.Task            `json:"tasks"`
		Errors []tasks.ValidationError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "Ship feature", resp.Tasks[0].Name)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 1, resp.Errors[0].Line)
	assert.Contains(t, resp.Errors[0].Reason, "non-positive duration")
}

func TestPrioritize_FallsBackToEngine(t *testing.T) {
	f := newFixture(t, 500, "boom")
	f.parseAndPrioritize(t)

	rec := f.do(f.h.Prioritize(), http.MethodPost, "/tasks/prioritize", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tasks  []tasks.Task `json:"tasks"`
		Source string       `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ai.SourceFallback, resp.Source)
	require.Len(t, resp.Tasks, 4)
	// 2025-11-23 is within the week of 2025-11-18 and tagged urgent.
	assert.Equal(t, "Fix payment bug", resp.Tasks[0].Name)
}

func TestPrioritize_RequiresParsedTasks(t *testing.T) {
	f := newFixture(t, 500, "boom")

	rec := f.do(f.h.Prioritize(), http.MethodPost, "/tasks/prioritize", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePlan_FallbackPacking(t *testing.T) {
	f := newFixture(t, 500, "boom")
	f.parseAndPrioritize(t)

	rec := f.do(f.h.GeneratePlan(), http.MethodPost, "/plan", `{"budget_minutes":120}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan planner.DailyPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, ai.SourceFallback, plan.Source)
	assert.Equal(t, 120, plan.BudgetMinutes)
	// Ranked: bug(60) proposal(90) slides(150) blog(120). Only the bug fits;
	// the remaining 60 minutes hold none of the others.
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, "Fix payment bug", plan.Entries[0].Task.Name)
	assert.Len(t, plan.Unscheduled, 3)
}

func TestGeneratePlan_ZeroBudgetWarns(t *testing.T) {
	f := newFixture(t, 500, "boom")
	f.parseAndPrioritize(t)

	rec := f.do(f.h.GeneratePlan(), http.MethodPost, "/plan", `{"budget_minutes":0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan planner.DailyPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.True(t, plan.BudgetWarning)
	assert.Empty(t, plan.Entries)
	assert.Len(t, plan.Unscheduled, 4)
}

func TestGeneratePlan_DefaultBudgetFromWorkday(t *testing.T) {
	f := newFixture(t, 500, "boom")
	f.parseAndPrioritize(t)

	rec := f.do(f.h.GeneratePlan(), http.MethodPost, "/plan", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan planner.DailyPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, 480, plan.BudgetMinutes, "09:00-17:00 workday")
	assert.Len(t, plan.Entries, 4, "all four tasks fit 480 minutes")
}

func TestGeneratePlan_RequiresRanking(t *testing.T) {
	f := newFixture(t, 500, "boom")

	rec := f.do(f.h.GeneratePlan(), http.MethodPost, "/plan", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNudges_FallbackAlwaysAnswers(t *testing.T) {
	f := newFixture(t, 500, "boom")

	rec := f.do(f.h.Nudges(), http.MethodPost, "/nudges", `{"profile":"dev","tone":"friendly"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Nudges []string `json:"nudges"`
		Source string   `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ai.SourceFallback, resp.Source)
	assert.Len(t, resp.Nudges, 3)
}

func TestExportTasksCSV(t *testing.T) {
	f := newFixture(t, 500, "boom")
	f.parseAndPrioritize(t)

	rec := f.do(f.h.ExportTasksCSV(), http.MethodGet, "/export/tasks.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "name,duration_minutes,due_date,tag,composite_priority", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Fix payment bug,60,2025-11-23,urgent,"))
}

func TestExportPlanJSON_RequiresPlan(t *testing.T) {
	f := newFixture(t, 500, "boom")
	f.parseAndPrioritize(t)

	rec := f.do(f.h.ExportPlanJSON(), http.MethodGet, "/export/plan.json", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(f.h.GeneratePlan(), http.MethodPost, "/plan", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(f.h.ExportPlanJSON(), http.MethodGet, "/export/plan.json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var plan planner.DailyPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.NotEmpty(t, plan.Entries)
}

func TestParseTasks_NewUploadInvalidatesRanking(t *testing.T) {
	f := newFixture(t, 500, "boom")
	f.parseAndPrioritize(t)

	rec := f.do(f.h.ParseTasks(), http.MethodPost, "/tasks/parse", `{"raw_text":"Only task | 30"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(f.h.ExportTasksCSV(), http.MethodGet, "/export/tasks.csv", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "old ranking must not survive a new upload")
}

func TestPrioritize_ModelOrderingSupersedesEngine(t *testing.T) {
	reply := `[{"name":"Write blog post","priority_score":99},` +
		`{"name":"Finish client proposal","priority_score":80},` +
		`{"name":"Fix payment bug","priority_score":70},` +
		`{"name":"Prepare slides","priority_score":60}]`
	wrapped, err := json.Marshal([]map[string]string{{"generated_text": reply}})
	require.NoError(t, err)

	f := newFixture(t, 200, string(wrapped))
	rec := f.do(f.h.ParseTasks(), http.MethodPost, "/tasks/parse", `{"raw_text":"`+strings.ReplaceAll(sampleInput, "\n", `\n`)+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(f.h.Prioritize(), http.MethodPost, "/tasks/prioritize", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tasks  []tasks.Task `json:"tasks"`
		Source string       `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ai.SourceModel, resp.Source)
	assert.Equal(t, "Write blog post", resp.Tasks[0].Name)
}
