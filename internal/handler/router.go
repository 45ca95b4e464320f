package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"duvidha/internal/pkg/auth/jwt"
	"duvidha/internal/pkg/logx"
	"duvidha/internal/pkg/resp"
)

// Router builds the HTTP routing table.
//
// Every /api/v1 request passes through the identity extractor; the /me and
// complaint routes additionally require a verified token.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := deps.Config.AllowedOrigins
	if deps.Config.IsDevelopment() {
		allowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondText(w, http.StatusOK, "ok")
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", HandleSignup(deps))
			auth.Post("/signin", HandleSignin(deps))
			auth.With(jwt.RequireAuth).Get("/me", HandleMe(deps))
		})

		api.Route("/complaints", func(complaints chi.Router) {
			complaints.Use(jwt.RequireAuth)

			complaints.Post("/", HandleCreateComplaint(deps))
			complaints.Get("/", HandleListComplaints(deps))
			complaints.Get("/{id}", HandleGetComplaint(deps))
			complaints.Patch("/{id}/status", HandleUpdateComplaintStatus(deps))
		})
	})

	return r
}
