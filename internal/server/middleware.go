package server

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dagenius007/pr-reviewer/internal/logging"
)

// requestLogger logs one line per request once the handler returns.
func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			kv := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"uri", r.RequestURI,
				"remote_ip", r.RemoteAddr,
				"status", status,
				"latency", time.Since(start).String(),
				"bytes_in", r.ContentLength,
				"bytes_out", ww.BytesWritten(),
			}
			if status >= http.StatusInternalServerError {
				log.Warn("request failed", kv...)
				return
			}
			log.Info("request completed", kv...)
		})
	}
}

// recoverer turns a handler panic into the JSON 500 body every other error
// path returns.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			s.log.Error(fmt.Errorf("%v", rec), "handler panicked",
				"request_id", middleware.GetReqID(r.Context()),
				"uri", r.RequestURI,
				"stack", string(debug.Stack()))
			if r.Header.Get("Connection") != "Upgrade" {
				s.writeError(w, http.StatusInternalServerError, msgInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
