package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/wangcai/pkg/metrics"
)

// MetricsMiddleware records request count, latency and error class for endpoint.
// The site pages reuse it so every surface lands in the same series.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(time.Since(start).Milliseconds()))

		if kind, severity, ok := errorClass(rec.status); ok {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
			metrics.RecordErrorByType(kind, severity)
		}
	}
}

// errorClass names a failed status after the error codes of the JSON body.
func errorClass(status int) (kind, severity string, ok bool) {
	switch {
	case status >= http.StatusInternalServerError:
		return codeInternal, "high", true
	case status == http.StatusConflict:
		return codeInvalidTransition, "low", true
	case status == http.StatusNotFound:
		return codeNotFound, "low", true
	case status >= http.StatusBadRequest:
		return codeBadRequest, "medium", true
	}
	return "", "", false
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
