package logger

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

// statusRecorder captures what the handler wrote so the access log can
// report it. Status defaults to 200, matching net/http's implicit header.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	size, err := r.ResponseWriter.Write(b)
	r.size += size
	return size, err
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.status = statusCode
}

func Initialize() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}

	defer logger.Sync()

	Log = logger.Sugar()
	return nil
}

// Middleware writes one access-log line per request. Codes being resolved
// show up as the path, so this doubles as a crude redirect audit trail.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		Log.Infow("shortener request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", rec.status,
			"bytes", rec.size,
			"duration", time.Since(start),
		)
	})
}
