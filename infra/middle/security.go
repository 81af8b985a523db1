package middle

import (
	"mime"
	"net/http"

	"github.com/mstgnz/paybridge/infra/response"
)

// MaxRequestBodyBytes bounds the size of any request body
const MaxRequestBodyBytes = 1 << 20

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Content-Security-Policy", "default-src 'none'")
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("Cache-Control", "no-store")

			next.ServeHTTP(w, r)
		})
	}
}

var allowedContentTypes = map[string]bool{
	"application/x-www-form-urlencoded": true,
	"multipart/form-data":               true,
	"application/json":                  true,
}

// RequestValidationMiddleware rejects POST/PUT/PATCH requests whose body is
// not a form or JSON document and caps the body size.
func RequestValidationMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				contentType := r.Header.Get("Content-Type")
				if contentType == "" {
					response.Error(w, http.StatusBadRequest, "Content-Type header is required", nil)
					return
				}

				mediaType, _, err := mime.ParseMediaType(contentType)
				if err != nil || !allowedContentTypes[mediaType] {
					response.Error(w, http.StatusUnsupportedMediaType, "Content-Type must be application/x-www-form-urlencoded, multipart/form-data or application/json", nil)
					return
				}
			}

			if r.ContentLength > MaxRequestBodyBytes {
				response.Error(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}
