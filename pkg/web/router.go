package web

import "net/http"

// Router is a ServeMux whose unmatched GET and HEAD requests go to a
// fallback handler, typically a rendered 404 page. Other methods keep the
// mux's plain 404 and 405 responses.
type Router struct {
	*http.ServeMux
	fallback http.HandlerFunc
}

// NewRouter creates a Router with no fallback.
func NewRouter() *Router {
	return &Router{ServeMux: http.NewServeMux()}
}

// SetFallback configures the handler for unmatched page requests.
func (r *Router) SetFallback(handler http.HandlerFunc) {
	r.fallback = handler
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.fallback != nil && (req.Method == http.MethodGet || req.Method == http.MethodHead) {
		if _, pattern := r.Handler(req); pattern == "" {
			r.fallback(w, req)
			return
		}
	}
	r.ServeMux.ServeHTTP(w, req)
}
