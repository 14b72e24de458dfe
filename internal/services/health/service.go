package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Report is the readiness payload.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}

// Service reports whether the service's dependencies are usable.
type Service struct {
	DB            *sql.DB
	LLMConfigured bool
	Provider      string
}

// NewService constructs a health service. db may be nil when history is kept
// in memory.
func NewService(db *sql.DB, llmConfigured bool, provider string) *Service {
	return &Service{DB: db, LLMConfigured: llmConfigured, Provider: provider}
}

// Status pings the database and reports the completion client state. A
// missing API key does not make the service unready; requests still get the
// error payload.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true, Checks: map[string]string{}}

	switch {
	case s.DB == nil:
		report.Checks["database"] = "memory"
	default:
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.DB.PingContext(pingCtx); err != nil {
			report.OK = false
			report.Checks["database"] = "error: " + err.Error()
		} else {
			report.Checks["database"] = "ok"
		}
	}

	if s.LLMConfigured {
		report.Checks["llm"] = s.Provider
	} else {
		report.Checks["llm"] = "unconfigured"
	}
	return report
}
