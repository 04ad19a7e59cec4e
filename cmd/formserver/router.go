package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/reoring/goform/httpform"
	"github.com/reoring/goform/source"
)

// NewRouter mounts the demo forms:
//
//	POST /signup          validates and creates an account
//	POST /signup/validate validates only and echoes the normalized payload
//	GET  /healthz
func NewRouter(cfg Config, log *slog.Logger) http.Handler {
	opts := httpform.Options{
		Decode:        source.Opt{MaxBytes: cfg.MaxBodyBytes},
		SuccessStatus: http.StatusCreated,
		Localize:      cfg.Localize,
		Logger:        log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/signup", func(r chi.Router) {
		r.Post("/", httpform.Handler(signupSchema, createAccount, opts).ServeHTTP)
		r.With(httpform.Middleware(signupSchema, opts)).Post("/validate", echoSignup)
	})
	return r
}

func echoSignup(w http.ResponseWriter, r *http.Request) {
	s, ok := httpform.ValueFromContext[Signup](r.Context())
	if !ok {
		http.Error(w, "missing signup", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = jsonEncode(w, s)
}
