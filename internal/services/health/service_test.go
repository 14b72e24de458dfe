package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatusMemoryBackend(t *testing.T) {
	report := NewService(nil, false, "gemini").Status(context.Background())
	if !report.OK {
		t.Fatalf("expected ok report")
	}
	if report.Checks["database"] != "memory" || report.Checks["llm"] != "unconfigured" {
		t.Fatalf("unexpected checks %+v", report.Checks)
	}
}

func TestStatusPingsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectPing()
	report := NewService(db, true, "openai").Status(context.Background())
	if !report.OK || report.Checks["database"] != "ok" || report.Checks["llm"] != "openai" {
		t.Fatalf("unexpected report %+v", report)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	report = NewService(db, true, "openai").Status(context.Background())
	if report.OK {
		t.Fatalf("expected failing report")
	}
	if report.Checks["database"] != "error: connection refused" {
		t.Fatalf("unexpected database check %q", report.Checks["database"])
	}
}
