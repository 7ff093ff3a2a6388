package logger

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// slowRequest is the duration above which a request is logged as slow
const slowRequest = time.Second

// Transport logs every outgoing request and its outcome
type Transport struct {
	Next   http.RoundTripper
	Logger *Logger
}

// NewTransport wraps next (http.DefaultTransport when nil) with request logging
func NewTransport(next http.RoundTripper, logger *Logger) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{Next: next, Logger: logger}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	log := t.Logger
	if log == nil {
		log = GetLogger()
	}

	reqLog := log.zap.With(
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
	)
	reqLog.Debug("Request sent", zap.Int64("content_length", req.ContentLength))

	start := time.Now()
	resp, err := t.Next.RoundTrip(req)
	duration := time.Since(start)
	reqLog = reqLog.With(zap.Duration("duration", duration))

	if err != nil {
		reqLog.Warn("Request failed", zap.Error(err))
		return nil, err
	}

	reqLog = reqLog.With(zap.Int("status", resp.StatusCode))
	switch {
	case resp.StatusCode >= 500:
		reqLog.Warn("Request failed with server error")
	case resp.StatusCode >= 400:
		reqLog.Warn("Request failed with client error")
	default:
		reqLog.Debug("Request completed")
	}

	if duration > slowRequest {
		reqLog.Info("Slow request detected")
	}
	return resp, nil
}
