package api

import (
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rubiojr/docsearch/pkg/log"
)

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CompressMiddleware gzips responses for clients that accept it.
func CompressMiddleware(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LogMiddleware writes one debug line per request to the "http" logger.
func LogMiddleware(next http.Handler) http.Handler {
	logger := log.ForService("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debugf("%s %s %d %s", r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Round(time.Microsecond))
	})
}

// Wrap applies the standard middleware chain: logging, CORS, compression.
func Wrap(h http.Handler) http.Handler {
	return LogMiddleware(CorsMiddleware(CompressMiddleware(h)))
}
