package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Routes(m *Middleware, corsOrigins []string, rateLimitRPM int) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(m.CorrelationID)
	r.Use(m.Trace)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(m.Compress)
	r.Use(m.Timeout(15 * time.Second))
	r.Use(middleware.Heartbeat("/ping"))

	// CORS and rate limiting - configured from main
	r.Use(m.CORS(corsOrigins))
	r.Use(m.RateLimit(rateLimitRPM))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	// Health endpoints
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/posts", func(r chi.Router) {
			r.Post("/", h.CreatePost)
			r.Get("/", h.ListPosts)
			r.Get("/{id}", h.GetPost)
			r.Put("/{id}", h.UpdatePost)
			r.Delete("/{id}", h.DeletePost)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Post("/", h.CreateComment)
			r.Get("/", h.ListComments)
			r.Get("/post/{postId}", h.ListCommentsByPost)
			r.Get("/{id}", h.GetComment)
			r.Put("/{id}", h.UpdateComment)
			r.Delete("/{id}", h.DeleteComment)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Post("/", h.CreateTag)
			r.Get("/", h.ListTags)
			r.Get("/name/{name}", h.GetTagByName)
			r.Get("/{id}", h.GetTag)
			r.Put("/{id}", h.UpdateTag)
			r.Delete("/{id}", h.DeleteTag)
		})

		r.Route("/post-details", func(r chi.Router) {
			r.Post("/", h.CreatePostDetails)
			r.Get("/", h.ListPostDetails)
			r.Get("/post/{postId}", h.GetPostDetailsByPost)
			r.Get("/{id}", h.GetPostDetails)
			r.Put("/{id}", h.UpdatePostDetails)
			r.Delete("/{id}", h.DeletePostDetails)
		})

		// Legacy verb-style paths
		r.Route("/v1/post", func(r chi.Router) {
			r.Post("/create", h.CreatePost)
			r.Get("/get/all", h.ListPosts)
			r.Get("/get/{id}", h.GetPost)
			r.Put("/update/{id}", h.UpdatePost)
			r.Delete("/delete/{id}", h.DeletePost)
		})
		r.Route("/v1/post-detail", func(r chi.Router) {
			r.Post("/create", h.CreatePostDetails)
			r.Get("/get/all", h.ListPostDetails)
			r.Get("/get/post/{postId}", h.GetPostDetailsByPost)
			r.Get("/get/{id}", h.GetPostDetails)
			r.Put("/update/{id}", h.UpdatePostDetails)
			r.Delete("/delete/{id}", h.DeletePostDetails)
		})
	})

	return r
}
