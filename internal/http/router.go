package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router wraps the standard library ServeMux (no third-party router needed
// for a surface this small).
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRoutes wires the bridge API.
func (r *Router) RegisterRoutes(h *Handler) {
	r.Handle("/api/v1/state", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetState(w, req)
	})

	r.Handle("/api/v1/health", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetHealth(w, req)
	})

	// side-scoped writes: /api/v1/sides/{side}/{action...}
	r.Handle("/api/v1/sides/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, "/api/v1/sides/")
		side, action, ok := strings.Cut(rest, "/")
		if !ok || side == "" || action == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.PostSideAction(w, req, side, action)
	})

	// pod-scoped writes
	r.Handle("/api/v1/pod/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		action := strings.TrimPrefix(req.URL.Path, "/api/v1/pod/")
		if action == "" || strings.Contains(action, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.PostPodAction(w, req, action)
	})

	r.Handle("/api/v1/services/biometrics", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.PostBiometrics(w, req)
	})
}
