package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"equity-analyst/internal/logger"
)

const requestIDKey = "request_id"

// requestID reuses an incoming X-Request-Id or assigns a new one.
func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(requestIDKey, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}

func requestIDOf(c echo.Context) string {
	id, _ := c.Get(requestIDKey).(string)
	return id
}

func recoverer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					perr, ok := r.(error)
					if !ok {
						perr = fmt.Errorf("%v", r)
					}
					logger.ErrorWithErr(c.Request().Context(), "Handler panicked", perr,
						"request_id", requestIDOf(c),
						"stack", string(debug.Stack()),
					)
					err = c.JSON(http.StatusInternalServerError, errorResponse{
						Errors: []ValidationError{{Code: "ERR_INTERNAL", Message: "internal server error"}},
					})
				}
			}()
			return next(c)
		}
	}
}

// observe logs each request and feeds the recorder.
func observe(rec *Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			latency := time.Since(start)
			rec.RecordRequest(c.Path(), req.Method, res.Status, latency.Seconds())
			logger.Info(req.Context(), "HTTP request served",
				"request_id", requestIDOf(c),
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"latency_ms", latency.Milliseconds(),
			)
			return nil
		}
	}
}
