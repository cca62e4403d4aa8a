package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"voxablog/internal/apperror"
)

// NewRouter registers every route. Protected handlers are wrapped in auth,
// which must attach a session to the request context. They share the /api
// subrouter with the public routes so a wrong method still yields 405.
func NewRouter(h *Handlers, auth func(http.Handler) http.Handler, metricsHandler http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.StrictSlash(true)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/reset-password", h.ResetPassword).Methods(http.MethodPost)

	api.HandleFunc("/blogs", h.GetPosts).Methods(http.MethodGet)
	api.HandleFunc("/blogs/{id}", h.GetPost).Methods(http.MethodGet)

	protected := func(fn http.HandlerFunc) http.Handler {
		return auth(fn)
	}

	api.Handle("/me", protected(h.GetCurrentUser)).Methods(http.MethodGet)
	api.Handle("/blogs", protected(h.CreatePost)).Methods(http.MethodPost)
	api.Handle("/blogs/{id}", protected(h.UpdatePost)).Methods(http.MethodPut)
	api.Handle("/blogs/{id}", protected(h.DeletePost)).Methods(http.MethodDelete)
	api.Handle("/blogs/{id}/like", protected(h.LikePost)).Methods(http.MethodPost)
	api.Handle("/blogs/{id}/comment", protected(h.AddComment)).Methods(http.MethodPost)
	api.Handle("/blogs/{id}/comment/{commentId}", protected(h.DeleteComment)).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, ErrorResponse{Error: "Route not found", Kind: apperror.KindNotFound}, http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, ErrorResponse{Error: "Method not allowed", Kind: apperror.KindValidation}, http.StatusMethodNotAllowed)
	})

	return r
}
