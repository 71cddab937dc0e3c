package http

import (
	"net/http"
	"path"
)

// NewStaticHandler serves files under dir, with "/" mapped to index.
// Content-Type comes from the file extension.
func NewStaticHandler(dir, index string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path == "/" {
			r2 := r.Clone(r.Context())
			r2.URL.Path = path.Join("/", index)
			r2.URL.RawPath = ""
			r = r2
		}
		fs.ServeHTTP(w, r)
	})
}
