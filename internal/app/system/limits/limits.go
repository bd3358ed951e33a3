// internal/app/system/limits/limits.go
package limits

import "net/http"

// Request body size limits. These prevent memory exhaustion from
// oversized requests; every payload this API accepts is a small JSON
// document.
const (
	// MaxJSONBodySize is the maximum size for JSON request bodies.
	MaxJSONBodySize = 64 << 10 // 64 KB
)

// JSONBody caps request body reads at MaxJSONBodySize.
func JSONBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)
		}
		next.ServeHTTP(w, r)
	})
}
