package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(pollHandler *PollHandler, voteHandler *VoteHandler, userHandler *UserHandler, jwtSecret []byte) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(AuthMiddleware(jwtSecret))

	r.Route("/api", func(r chi.Router) {
		r.With(RequireAuth).Get("/me", userHandler.GetMe)

		r.Route("/polls", func(r chi.Router) {
			r.Get("/", pollHandler.ListActive)
			r.Get("/{id}", pollHandler.GetPoll)
			r.Post("/{id}/votes", voteHandler.SubmitVote)
			r.Get("/{id}/results", voteHandler.GetResults)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth)
				r.Post("/", pollHandler.CreatePoll)
				r.Get("/all", pollHandler.ListAll)
				r.Patch("/{id}", pollHandler.UpdatePoll)
				r.Delete("/{id}", pollHandler.DeletePoll)
			})
		})
	})

	return r
}
