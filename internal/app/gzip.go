package app

import (
	"compress/gzip"
	"io"
	"net/http"
	"slices"
	"strings"
)

// This service answers with JSON on the API surface, plain text on POST /
// and the redirect errors, and HTML never; all three body kinds compress.
var compressibleTypes = []string{"application/json", "text/plain", "text/html"}

type (
	compressWriter struct {
		w   http.ResponseWriter
		gzw *gzip.Writer
	}

	decompressReader struct {
		r   io.Reader
		gzr *gzip.Reader
	}
)

func (cw compressWriter) Header() http.Header {
	return cw.w.Header()
}

func (cw compressWriter) Write(b []byte) (int, error) {
	return cw.gzw.Write(b)
}

func (cw compressWriter) WriteHeader(statusCode int) {
	cw.Header().Set("Content-Encoding", "gzip")
	cw.w.WriteHeader(statusCode)
}

func (dr decompressReader) Close() error {
	return dr.gzr.Close()
}

func (dr decompressReader) Read(p []byte) (n int, err error) {
	return dr.gzr.Read(p)
}

func compressible(contentType string) bool {
	return slices.ContainsFunc(compressibleTypes, func(cType string) bool {
		return strings.Contains(contentType, cType)
	})
}

func gzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origRW := w

		gzipAllowed := strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
		if gzipAllowed && compressible(r.Header.Get("Content-Type")) {
			gzw := gzip.NewWriter(w)
			origRW = compressWriter{w, gzw}
			defer gzw.Close()
		}

		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			gzr, err := gzip.NewReader(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			r.Body = decompressReader{r.Body, gzr}
			defer r.Body.Close()
		}

		next.ServeHTTP(origRW, r)
	})
}
