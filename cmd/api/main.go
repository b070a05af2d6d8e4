package main

import (
	"log"
	"net/http"

	"github.com/rs/cors"

	"taskbrain-backend/internal/ai"
	"taskbrain-backend/internal/config"
	"taskbrain-backend/internal/httpapi"
	"taskbrain-backend/internal/session"
	"taskbrain-backend/internal/telemetry"
)

func main() {
	cfg := config.Load()

	aiClient := ai.New(cfg.HFToken, cfg.HFModel, cfg.HFAPIBase, cfg.HFTimeout)
	if cfg.HFToken == "" {
		log.Println("⚠️ HF_TOKEN not set, serving deterministic results only")
	}

	sessions := session.NewStore()
	events := telemetry.NewRecorder()
	h := httpapi.NewHandler(cfg, aiClient, sessions, events)
	mw := session.NewMiddleware(cfg.JWTSecret, sessions)

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Session bootstrap (no auth)
	mux.HandleFunc("/session", session.CreateHandler(cfg.JWTSecret, sessions))

	// ----- TASKS API -----
	mux.HandleFunc("/tasks/parse", mw.Wrap(h.ParseTasks()))
	mux.HandleFunc("/tasks/prioritize", mw.Wrap(h.Prioritize()))
	mux.HandleFunc("/plan", mw.Wrap(h.GeneratePlan()))
	mux.HandleFunc("/nudges", mw.Wrap(h.Nudges()))

	// ----- EXPORTS -----
	mux.HandleFunc("/export/tasks.csv", mw.Wrap(h.ExportTasksCSV()))
	mux.HandleFunc("/export/plan.json", mw.Wrap(h.ExportPlanJSON()))

	// ----- STATS -----
	mux.HandleFunc("/stats", telemetry.StatsHandler(events))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Platform", "X-App-Version", "X-Session-Id"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	log.Println("🚀 API server is running on :" + cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
