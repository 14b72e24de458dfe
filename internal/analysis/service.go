package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"analyst-backend/internal/llm"
	"analyst-backend/internal/shared/apierr"
	"analyst-backend/internal/shared/metrics"
	"analyst-backend/internal/shared/storage/object"
	"analyst-backend/internal/shared/telemetry"
	"analyst-backend/internal/shared/util"
)

// Service turns an uploaded text file and a question into one completion
// call and interprets the reply.
type Service struct {
	LLM      llm.Client
	Repo     Repo
	Archive  object.ObjectStore
	Provider string
	Model    string

	now   func() time.Time
	newID func() string
}

// NewService constructs a Service. repo and archive may be nil.
func NewService(client llm.Client, repo Repo, archive object.ObjectStore, provider, model string) *Service {
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	return &Service{
		LLM:      client,
		Repo:     repo,
		Archive:  archive,
		Provider: provider,
		Model:    model,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Analyze validates the upload, asks the model and interprets the reply.
// Every returned error is an *apierr.Error wrapping one of the package
// sentinels. The returned Outcome carries the analysis ID even on failure
// once validation has passed.
func (s *Service) Analyze(ctx context.Context, req Request) (Outcome, error) {
	if !strings.HasSuffix(req.FileName, ".txt") {
		metrics.IncAnalysisFailed(string(apierr.KindValidation))
		return Outcome{}, apierr.New(apierr.KindValidation, ErrUnsupportedFile.Error(), ErrUnsupportedFile)
	}
	if !utf8.Valid(req.Data) {
		metrics.IncAnalysisFailed(string(apierr.KindDecode))
		return Outcome{}, apierr.New(apierr.KindDecode, ErrInvalidEncoding.Error(), ErrInvalidEncoding)
	}

	start := s.now()
	metrics.IncAnalysisStarted()

	record := Analysis{
		ID:        s.newID(),
		RequestID: req.RequestID,
		FileName:  req.FileName,
		FileSize:  int64(len(req.Data)),
		Question:  req.Question,
		Provider:  s.Provider,
		Model:     s.Model,
		CreatedAt: start.UTC(),
	}
	record.ArchiveKey = s.archive(ctx, record.ID, req)

	prompt := BuildPrompt(string(req.Data), req.Question)
	record.PromptHash = util.SHA256Hex(prompt)

	reply, err := s.LLM.Complete(ctx, prompt)
	elapsed := s.now().Sub(start)
	record.DurationMs = elapsed.Milliseconds()
	metrics.ObserveAnalysisDuration(elapsed)

	if err != nil {
		record.Status = StatusFailed
		record.ErrorMessage = err.Error()
		s.save(ctx, record)
		metrics.IncAnalysisFailed(string(apierr.KindUpstream))
		telemetry.Error("analysis.failed", map[string]any{
			"analysis_id": record.ID,
			"request_id":  req.RequestID,
			"duration_ms": record.DurationMs,
			"err":         err,
		})
		return Outcome{AnalysisID: record.ID}, apierr.New(apierr.KindUpstream, err.Error(), fmt.Errorf("%w: %w", ErrUpstream, err))
	}

	cleaned := StripCodeFence(reply)
	outcome := Outcome{AnalysisID: record.ID, Kind: ResultText, Text: cleaned}
	if raw, ok := Interpret(cleaned); ok {
		outcome = Outcome{AnalysisID: record.ID, Kind: ResultJSON, JSON: raw}
	}

	record.Status = StatusCompleted
	record.ResultKind = outcome.Kind
	record.Result = outcome.Stored()
	s.save(ctx, record)
	metrics.IncAnalysisCompleted(outcome.Kind)
	telemetry.Info("analysis.completed", map[string]any{
		"analysis_id": record.ID,
		"request_id":  req.RequestID,
		"result_kind": outcome.Kind,
		"reply_bytes": len(reply),
		"duration_ms": record.DurationMs,
	})
	return outcome, nil
}

// Get returns a stored analysis.
func (s *Service) Get(ctx context.Context, analysisID string) (Analysis, error) {
	if s.Repo == nil {
		return Analysis{}, apierr.New(apierr.KindNotFound, ErrNotFound.Error(), ErrNotFound)
	}
	a, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Analysis{}, apierr.New(apierr.KindNotFound, ErrNotFound.Error(), err)
		}
		return Analysis{}, apierr.New(apierr.KindInternal, "failed to load analysis", err)
	}
	return a, nil
}

// List returns stored analyses newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	if s.Repo == nil {
		return []Analysis{}, nil
	}
	items, err := s.Repo.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, apierr.New(apierr.KindInternal, "failed to list analyses", err)
	}
	return items, nil
}

// archive stores the upload when an archive is configured. Failures are
// logged and never fail the analysis.
func (s *Service) archive(ctx context.Context, analysisID string, req Request) string {
	if s.Archive == nil {
		return ""
	}
	obj, err := s.Archive.Save(ctx, analysisID, req.FileName, bytes.NewReader(req.Data))
	if err != nil {
		telemetry.Warn("analysis.archive_failed", map[string]any{
			"analysis_id": analysisID,
			"err":         err,
		})
		return ""
	}
	return obj.Key
}

func (s *Service) save(ctx context.Context, record Analysis) {
	if s.Repo == nil {
		return
	}
	// The record outlives a cancelled request.
	if err := s.Repo.Create(context.WithoutCancel(ctx), record); err != nil {
		telemetry.Warn("analysis.record_failed", map[string]any{
			"analysis_id": record.ID,
			"err":         err,
		})
	}
}
