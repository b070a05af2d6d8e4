package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	HFToken   string
	HFModel   string
	HFAPIBase string
	HFTimeout time.Duration

	JWTSecret []byte

	DayStart             string // "HH:MM"
	DayEnd               string
	FocusMinutes         int
	DefaultBudgetMinutes int

	AllowedOrigins []string
}

func Load() *Config {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	model := os.Getenv("HF_MODEL")
	if model == "" {
		model = "google/flan-t5-small"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Println("⚠️ JWT_SECRET not set, using dev default")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	origins := []string{"*"}
	if o := os.Getenv("ALLOWED_ORIGINS"); o != "" {
		origins = []string{o}
	}

	return &Config{
		Port: port,

		HFToken:   os.Getenv("HF_TOKEN"),
		HFModel:   model,
		HFAPIBase: os.Getenv("HF_API_BASE"),
		HFTimeout: time.Duration(envInt("HF_TIMEOUT_SECONDS", 60)) * time.Second,

		JWTSecret: []byte(secret),

		DayStart:             envString("DAY_START", "09:00"),
		DayEnd:               envString("DAY_END", "17:00"),
		FocusMinutes:         envInt("FOCUS_MINUTES", 50),
		DefaultBudgetMinutes: envInt("DEFAULT_BUDGET_MINUTES", 480),

		AllowedOrigins: origins,
	}
}

// WorkdayMinutes derives a planning budget from the configured work hours.
// Falls back to the default budget when the hours don't parse or are inverted.
func (c *Config) WorkdayMinutes() int {
	start, err1 := time.Parse("15:04", c.DayStart)
	end, err2 := time.Parse("15:04", c.DayEnd)
	if err1 != nil || err2 != nil || !end.After(start) {
		return c.DefaultBudgetMinutes
	}
	return int(end.Sub(start).Minutes())
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
