package errors

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// maxCapturedBody bounds how much of a request body is kept for failure logs.
// Statement uploads beyond it are logged without a digest.
const maxCapturedBody = 1 << 20

// ErrorMiddleware recovers panics and writes one access log line per request.
// Failed requests also log a digest of their body.
type ErrorMiddleware struct {
	handler *ErrorHandler
	logger  *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(handler *ErrorHandler, logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		handler: handler,
		logger:  logger.With(slog.String("component", "error_middleware")),
	}
}

// Handler returns the middleware handler function
func (m *ErrorMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		var body []byte
		if r.Body != nil && r.ContentLength > 0 && r.ContentLength <= maxCapturedBody {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		start := time.Now()
		defer func() {
			if err := recover(); err != nil {
				m.handler.HandlePanic(ww, r, err)
			}
		}()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.Int("bytes", ww.BytesWritten()),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("user_agent", r.UserAgent()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		}
		if r.URL.RawQuery != "" {
			attrs = append(attrs, slog.String("query", r.URL.RawQuery))
		}
		if status >= 400 && len(body) > 0 {
			attrs = append(attrs, slog.Any("request", digestRequestBody(body)))
		}

		m.logger.LogAttrs(r.Context(), level, "http request", attrs...)
	})
}

// runRequestDigest is the shape of an analysis request as far as logging cares
type runRequestDigest struct {
	Company struct {
		Name   string `json:"name"`
		Sector string `json:"sector"`
	} `json:"company"`
	Statements []json.RawMessage `json:"statements"`
	Selection  *struct {
		IDs        []string `json:"ids"`
		Categories []string `json:"categories"`
	} `json:"selection"`
}

// digestRequestBody summarizes a failed request body. Analysis requests are
// reduced to company, statement count and selection size so financial
// figures never reach the logs. Anything else is logged truncated.
func digestRequestBody(body []byte) slog.Value {
	var d runRequestDigest
	if err := json.Unmarshal(body, &d); err == nil && (d.Company.Name != "" || d.Statements != nil) {
		attrs := []slog.Attr{
			slog.String("company", d.Company.Name),
			slog.Int("statements", len(d.Statements)),
			slog.Int("bytes", len(body)),
		}
		if d.Company.Sector != "" {
			attrs = append(attrs, slog.String("sector", d.Company.Sector))
		}
		if d.Selection != nil {
			attrs = append(attrs,
				slog.Int("selected_ids", len(d.Selection.IDs)),
				slog.Int("selected_categories", len(d.Selection.Categories)))
		}
		return slog.GroupValue(attrs...)
	}

	raw := string(body)
	if len(raw) > 200 {
		raw = raw[:200] + "..."
	}
	return slog.GroupValue(
		slog.String("raw", raw),
		slog.Int("bytes", len(body)),
	)
}
