// Package router sets up all HTTP routes and middleware chains for the
// folio API. Routes are organised into auth, public and admin groups with
// the appropriate middleware stacks.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"folio/internal/cache"
	"folio/internal/handlers"
	"folio/internal/middleware"
	"folio/internal/session"
	"folio/internal/storage"
)

// Deps holds everything the route table needs.
type Deps struct {
	Sessions *session.Manager
	Users    middleware.UserFinder
	Admin    *handlers.Admin
	Auth     *handlers.Auth
	Public   *handlers.Public

	// Cache may be nil; caching is then disabled.
	Cache *cache.ResponseCache
	// LoginLimiter may be nil to disable login rate limiting.
	LoginLimiter *middleware.RateLimiter

	ClientOrigin string
	HSTS         bool
	// UploadDir is served under storage.LocalPrefix when set. Leave empty
	// when media lives in object storage.
	UploadDir string
}

// New creates the configured chi router with all middleware and route
// groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(d.HSTS))
	r.Use(middleware.CORS(d.ClientOrigin))

	r.NotFound(notFoundHandler)
	r.Get("/health", healthHandler)

	if d.UploadDir != "" {
		fs := http.StripPrefix(storage.LocalPrefix+"/", http.FileServer(http.Dir(d.UploadDir)))
		r.Handle(storage.LocalPrefix+"/*", noDirListing(fs))
	}

	requireAuth := middleware.RequireAuth(d.Sessions, d.Users)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			login := http.Handler(http.HandlerFunc(d.Auth.Login))
			if d.LoginLimiter != nil {
				login = d.LoginLimiter.Middleware(login)
			}
			r.Method(http.MethodPost, "/login", login)
			r.Post("/logout", d.Auth.Logout)
			r.With(requireAuth).Get("/me", d.Auth.Me)
		})

		// Public read API, cached when a cache is configured.
		r.Group(func(r chi.Router) {
			r.Use(d.Cache.Middleware)
			r.Get("/posts", d.Public.Posts)
			r.Get("/posts/{idOrSlug}", d.Public.Post)
			r.Get("/projects", d.Public.Projects)
			r.Get("/taxonomy", d.Public.Taxonomy)
		})
		r.Post("/posts/{idOrSlug}/views", d.Public.PostViews)

		// Admin API: every route requires a valid session, and every
		// successful write drops the public cache.
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(d.Cache.InvalidateOnWrite)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", d.Admin.Posts)
				r.Post("/", d.Admin.CreatePost)
				r.Get("/{id}", d.Admin.Post)
				r.Put("/{id}", d.Admin.UpdatePost)
				r.Patch("/{id}", d.Admin.UpdatePost)
				r.Patch("/{id}/publish", d.Admin.PublishPost)
				r.Delete("/{id}", d.Admin.DeletePost)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", d.Admin.Projects)
				r.Post("/", d.Admin.CreateProject)
				r.Get("/{id}", d.Admin.Project)
				r.Put("/{id}", d.Admin.UpdateProject)
				r.Patch("/{id}", d.Admin.UpdateProject)
				r.Delete("/{id}", d.Admin.DeleteProject)
			})

			r.Route("/taxonomy", func(r chi.Router) {
				r.Get("/", d.Admin.Taxonomy)
				r.Post("/categories", d.Admin.CreateCategory)
				r.Delete("/categories/{id}", d.Admin.DeleteCategory)
				r.Post("/tags", d.Admin.CreateTag)
				r.Delete("/tags/{id}", d.Admin.DeleteTag)
			})

			r.Get("/media", d.Admin.Media)
			r.Post("/media", d.Admin.MediaUpload)

			r.Route("/account/2fa", func(r chi.Router) {
				r.Post("/setup", d.Auth.TwoFASetup)
				r.Post("/enable", d.Auth.TwoFAEnable)
				r.Post("/disable", d.Auth.TwoFADisable)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"message":"Not found"}`))
}

// noDirListing hides directory indexes of the upload directory.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			notFoundHandler(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
