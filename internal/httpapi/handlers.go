package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"taskbrain-backend/internal/ai"
	"taskbrain-backend/internal/config"
	"taskbrain-backend/internal/export"
	"taskbrain-backend/internal/nudges"
	"taskbrain-backend/internal/planner"
	"taskbrain-backend/internal/session"
	"taskbrain-backend/internal/tasks"
	"taskbrain-backend/internal/telemetry"
)

const planMaxTokens = 512

// Handler owns the request flow for the three product actions: parse,
// prioritize, plan, plus nudges and the two exports. The deterministic engine
// result is always available; the model result supersedes it only when the
// call and its parsing both succeed.
type Handler struct {
	Cfg      *config.Config
	AI       *ai.Client
	Sessions *session.Store
	Events   *telemetry.Recorder

	// now is swappable for tests; "today" for scoring is whatever it returns.
	now func() time.Time
}

func NewHandler(cfg *config.Config, aiClient *ai.Client, sessions *session.Store, events *telemetry.Recorder) *Handler {
	return &Handler{
		Cfg:      cfg,
		AI:       aiClient,
		Sessions: sessions,
		Events:   events,
		now:      time.Now,
	}
}

// ParseTasks normalizes raw pipe-delimited input. POST /tasks/parse.
func (h *Handler) ParseTasks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := session.IDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			RawText string `json:"raw_text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		parsed, errs := tasks.ParseBatch(body.RawText)
		if err := h.Sessions.SetTasks(id, parsed); err != nil {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}

		h.Events.Record("tasks_parsed", telemetry.FromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Tasks  []tasks.Task            `json:"tasks"`
			Errors []tasks.ValidationError `json:"errors"`
		}{Tasks: parsed, Errors: errs})
	}
}

// Prioritize ranks the session's tasks, model first with engine fallback.
// POST /tasks/prioritize.
func (h *Handler) Prioritize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := session.IDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			WorkStyle string `json:"work_style"`
			Tone      string `json:"tone"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		st, err := h.Sessions.Get(id)
		if err != nil {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}
		if len(st.Tasks) == 0 {
			http.Error(w, "no tasks parsed yet", http.StatusBadRequest)
			return
		}

		p := ai.FallbackPrioritizer{
			Primary:   &ai.ModelPrioritizer{Client: h.AI, WorkStyle: body.WorkStyle, Tone: body.Tone},
			Secondary: ai.EnginePrioritizer{},
		}
		ranked, source, err := p.Rank(r.Context(), st.Tasks, h.now())
		if err != nil {
			// unreachable with the engine as secondary, kept as a guard
			http.Error(w, "prioritization failed", http.StatusInternalServerError)
			return
		}

		if err := h.Sessions.SetRanked(id, ranked); err != nil {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}

		h.Events.Record("tasks_prioritized", telemetry.FromRequest(r))
		log.Printf("prioritized %d tasks (source=%s)", len(ranked), source)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Tasks  []tasks.Task `json:"tasks"`
			Source string       `json:"source"`
		}{Tasks: ranked, Source: source})
	}
}

// GeneratePlan packs the ranked list into today's schedule. POST /plan.
func (h *Handler) GeneratePlan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := session.IDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			BudgetMinutes *int `json:"budget_minutes"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		st, err := h.Sessions.Get(id)
		if err != nil {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}
		if len(st.Ranked) == 0 {
			http.Error(w, "prioritize tasks first", http.StatusBadRequest)
			return
		}

		budget := h.Cfg.WorkdayMinutes()
		if body.BudgetMinutes != nil {
			budget = *body.BudgetMinutes
		}

		plan := h.buildPlan(r, st.Ranked, budget)

		if err := h.Sessions.SetPlan(id, plan); err != nil {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}

		h.Events.Record("plan_generated", telemetry.FromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(plan)
	}
}

// buildPlan tries the model schedule and falls back to greedy packing. The
// engine plan is computed first so a bad model reply costs nothing extra.
func (h *Handler) buildPlan(r *http.Request, ranked []tasks.Task, budget int) planner.DailyPlan {
	today := h.now()
	fallback := planner.Plan(ranked, budget, today)
	fallback.Source = ai.SourceFallback

	if budget <= 0 {
		return fallback
	}

	prompt := ai.BuildPlanPrompt(ranked, fallback.Date, h.Cfg.DayStart, h.Cfg.DayEnd, h.Cfg.FocusMinutes)
	out, err := h.AI.Generate(r.Context(), prompt, planMaxTokens)
	if err != nil {
		log.Printf("plan fallback: %v", err)
		return fallback
	}

	plan, err := ai.ParsePlanReply(out, ranked, h.Cfg.DayStart, budget, today)
	if err != nil {
		log.Printf("plan fallback: %v", err)
		return fallback
	}
	plan.Source = ai.SourceModel
	return plan
}

// Nudges serves three short motivational messages. POST /nudges.
func (h *Handler) Nudges() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := session.IDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Profile string `json:"profile"`
			Tone    string `json:"tone"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		var top []string
		if st, err := h.Sessions.Get(id); err == nil {
			top = planner.TopSummary(st.Ranked, 3)
		}

		msgs, source := nudges.Generate(r.Context(), h.AI, body.Profile, body.Tone, top)

		h.Events.Record("nudges_served", telemetry.FromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Nudges []string `json:"nudges"`
			Source string   `json:"source"`
		}{Nudges: msgs, Source: source})
	}
}

// ExportTasksCSV downloads the latest ranking. GET /export/tasks.csv.
func (h *Handler) ExportTasksCSV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := session.IDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		st, err := h.Sessions.Get(id)
		if err != nil {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}
		if len(st.Ranked) == 0 {
			http.Error(w, "prioritize tasks first", http.StatusBadRequest)
			return
		}

		h.Events.Record("tasks_exported", telemetry.FromRequest(r))

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="prioritized.csv"`)
		if err := export.WriteTasksCSV(w, st.Ranked); err != nil {
			log.Printf("csv export error: %v", err)
		}
	}
}

// ExportPlanJSON downloads the latest plan. GET /export/plan.json.
func (h *Handler) ExportPlanJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := session.IDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		st, err := h.Sessions.Get(id)
		if err != nil {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}
		if st.Plan == nil {
			http.Error(w, "generate a plan first", http.StatusBadRequest)
			return
		}

		h.Events.Record("plan_exported", telemetry.FromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="today_plan.json"`)
		if err := export.WritePlanJSON(w, *st.Plan); err != nil {
			log.Printf("plan export error: %v", err)
		}
	}
}
