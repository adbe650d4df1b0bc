package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/eshaffer321/orderrecon/internal/api/dto"
	"github.com/eshaffer321/orderrecon/internal/application/report"
	"github.com/eshaffer321/orderrecon/internal/export"
)

// maxBodyBytes bounds the optional JSON body of report requests.
const maxBodyBytes = 1 << 20

// Base provides shared functionality for all handlers.
type Base struct {
	logger       *slog.Logger
	exposeErrors bool
	now          func() time.Time
}

// NewBase creates a new base handler. When exposeErrors is set, 500
// responses carry the raw error message.
func NewBase(logger *slog.Logger, exposeErrors bool) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{logger: logger, exposeErrors: exposeErrors, now: time.Now}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// WriteFailure maps err to a 400 for caller mistakes and a 500 otherwise.
func (b *Base) WriteFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, report.ErrInvalidInput) || errors.Is(err, export.ErrUnknownFormat) {
		b.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	b.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	b.WriteError(w, http.StatusInternalServerError, dto.InternalError(err, b.exposeErrors, b.now()))
}

// ReadWindowRequest reads start_time and end_time from the JSON body,
// falling back to query parameters for whichever the body leaves out.
func ReadWindowRequest(r *http.Request) (dto.ReportWindowRequest, error) {
	var req dto.ReportWindowRequest
	if r.Body != nil && r.Body != http.NoBody {
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return req, fmt.Errorf("%w: request body: %v", report.ErrInvalidInput, err)
		}
	}

	q := r.URL.Query()
	if req.StartTime == "" {
		req.StartTime = strings.TrimSpace(q.Get("start_time"))
	}
	if req.EndTime == "" {
		req.EndTime = strings.TrimSpace(q.Get("end_time"))
	}
	return req, nil
}
