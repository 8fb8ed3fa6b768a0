package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"equity-analyst/internal/intent"
	"equity-analyst/internal/logger"
	"equity-analyst/internal/runlog"
	"equity-analyst/internal/timeframe"
	"equity-analyst/internal/types"
)

type ParseRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
	Today    string `json:"today" validate:"omitempty,datetime=2006-01-02"`
}

type AskRequest struct {
	Question       string `json:"question" validate:"required,max=2000"`
	Today          string `json:"today" validate:"omitempty,datetime=2006-01-02"`
	ShowMetrics    bool   `json:"show_metrics"`
	TimeoutSeconds int    `json:"timeout_s" default:"60" validate:"gte=1,lte=600"`
}

type AskResponse struct {
	RequestID  string                  `json:"request_id"`
	Parsed     types.ParsedIntent      `json:"parsed"`
	Answer     string                  `json:"answer"`
	Answered   bool                    `json:"answered"`
	Metrics    map[string]types.Digest `json:"metrics,omitempty"`
	Iterations int                     `json:"iterations"`
	Fallbacks  int                     `json:"fallbacks"`
}

type errorResponse struct {
	RequestID string            `json:"request_id,omitempty"`
	Errors    []ValidationError `json:"errors"`
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) parse(c echo.Context) error {
	var req ParseRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{RequestID: requestIDOf(c), Errors: errs})
	}
	anchor, _ := timeframe.ParseAnchor(req.Today)
	return c.JSON(http.StatusOK, intent.Parse(req.Question, anchor))
}

func (s *Server) ask(c echo.Context) error {
	id := requestIDOf(c)
	var req AskRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{RequestID: id, Errors: errs})
	}

	anchor, _ := timeframe.ParseAnchor(req.Today)
	parsed := intent.Parse(req.Question, anchor)

	timeout := min(time.Duration(req.TimeoutSeconds)*time.Second, s.requestTimeout())
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	res, err := s.analyst.Run(ctx, req.Question, parsed)
	if err != nil {
		status, code := http.StatusInternalServerError, "ERR_INTERNAL"
		if errors.Is(err, context.DeadlineExceeded) {
			status, code = http.StatusGatewayTimeout, "ERR_TIMEOUT"
		}
		return c.JSON(status, errorResponse{RequestID: id, Errors: []ValidationError{{Code: code, Message: err.Error()}}})
	}

	s.recorder.RecordAnalysis(res)
	if _, err := s.runlog.Append(runlog.FromAnalysis("http", id, res)); err != nil {
		logger.ErrorWithErr(ctx, "Run log append failed", err, "request_id", id)
	}

	resp := AskResponse{
		RequestID:  id,
		Parsed:     res.Parsed,
		Answer:     res.Answer,
		Answered:   res.Answered,
		Iterations: res.Iterations,
		Fallbacks:  res.Fallbacks,
	}
	if req.ShowMetrics {
		resp.Metrics = res.Metrics
	}
	return c.JSON(http.StatusOK, resp)
}
