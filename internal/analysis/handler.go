package analysis

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"analyst-backend/internal/shared/apierr"
	"analyst-backend/internal/shared/server/middleware"
	"analyst-backend/internal/shared/server/respond"
)

// DefaultMaxUploadBytes bounds the multipart body when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// AnalysisIDHeader names the response header carrying the analysis ID.
const AnalysisIDHeader = "X-Analysis-Id"

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc            *Service
	Mode           apierr.Mode
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, mode apierr.Mode, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{Svc: svc, Mode: mode, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches analysis routes.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/analyze/", h.analyze)
	r.GET("/analyses", h.list)
	r.GET("/analyses/:id", h.get)
}

func (h *Handler) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.fail(c, formError("file", err))
		return
	}
	// An empty form value counts as missing.
	question := c.PostForm("question")
	if question == "" {
		h.fail(c, apierr.New(apierr.KindMissingField, "Field required: question", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(c, apierr.New(apierr.KindValidation, "unable to read file", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(c, apierr.New(apierr.KindValidation, "unable to read file", err))
		return
	}

	outcome, err := h.Svc.Analyze(c.Request.Context(), Request{
		RequestID: middleware.RequestIDFromContext(c),
		FileName:  fileHeader.Filename,
		Data:      data,
		Question:  question,
	})
	if outcome.AnalysisID != "" {
		c.Header(AnalysisIDHeader, outcome.AnalysisID)
		c.Set(middleware.AnalysisIDKey, outcome.AnalysisID)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Set(middleware.ResultKindKey, outcome.Kind)
	respond.OK(c, gin.H{"result": outcome.Result()})
}

func (h *Handler) get(c *gin.Context) {
	a, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, a)
}

func (h *Handler) list(c *gin.Context) {
	limit := parseIntDefault(c.Query("limit"), 20)
	offset := parseIntDefault(c.Query("offset"), 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) fail(c *gin.Context, err error) {
	respond.Fail(c, h.Mode, err)
}

// formError classifies a multipart lookup failure for field.
func formError(field string, err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return apierr.New(apierr.KindValidation, "upload exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes", err)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return apierr.New(apierr.KindMissingField, "Field required: "+field, err)
	default:
		return apierr.New(apierr.KindValidation, "invalid multipart form", err)
	}
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
