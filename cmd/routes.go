package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.requireAuth)
	optionalAuthMiddleware := standardMiddleware.Append(app.optionalAuth)

	mux := pat.New()

	// Reviews. Literal paths must be registered before the :place_id
	// wildcard; pat dispatches in registration order.
	mux.Get("/reviews/all", standardMiddleware.ThenFunc(app.reviewHandler.GetAllReviews))
	mux.Get("/reviews/my-review/:place_id", optionalAuthMiddleware.ThenFunc(app.reviewHandler.GetMyPlaceReview))
	mux.Get("/reviews/user/:user_id/place/:place_id", standardMiddleware.ThenFunc(app.reviewHandler.GetUserPlaceReview))

	mux.Post("/reviews/:place_id", authMiddleware.ThenFunc(app.reviewHandler.CreateReview))
	mux.Get("/reviews/:place_id", standardMiddleware.ThenFunc(app.reviewHandler.GetPlaceReviews))
	mux.Add("PATCH", "/reviews/:place_id", authMiddleware.ThenFunc(app.reviewHandler.UpdateReview))
	mux.Del("/reviews/:place_id", authMiddleware.ThenFunc(app.reviewHandler.DeleteReview))

	return mux
}
