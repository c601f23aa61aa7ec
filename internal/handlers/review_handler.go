package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"tripwiseBack/internal/models"
	"tripwiseBack/internal/services"
)

type ReviewHandler struct {
	Service *services.ReviewService
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

type reviewBody struct {
	Rating interface{} `json:"rating"`
	Review *string     `json:"review"`
}

// parseReviewBody decodes a create/update payload into the optional fields
// the service validates. A rating arriving as a numeric string still parses,
// matching what clients send in practice; "abc" does not.
func parseReviewBody(r *http.Request) (*int, *string, error) {
	var body reviewBody
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, nil, errors.New("Request body must be valid JSON")
	}

	var rating *int
	switch v := body.Rating.(type) {
	case nil:
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return nil, nil, errors.New("Rating must be a valid integer between 1 and 5")
		}
		rating = &n
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, errors.New("Rating must be a valid integer between 1 and 5")
		}
		rating = &n
	default:
		return nil, nil, errors.New("Rating must be a valid integer between 1 and 5")
	}
	return rating, body.Review, nil
}

func listParamsFromRequest(r *http.Request, defaultSize int) models.ListParams {
	params := models.ListParams{Page: 1, Size: defaultSize, SortBy: "created_at", Order: "desc"}
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Page = n
		}
	}
	if v := q.Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Size = n
		}
	}
	if v := q.Get("sort_by"); v != "" {
		params.SortBy = v
	}
	if v := q.Get("order"); v != "" {
		params.Order = v
	}
	return params
}

// respondServiceError maps the service's error taxonomy to status codes.
// Anything unrecognized degrades to a generic 500 without leaking internals.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, models.ErrPlaceNotFound):
		respondError(w, http.StatusNotFound, "Place not found")
	case errors.Is(err, models.ErrReviewNotFound):
		respondError(w, http.StatusNotFound, "Review not found")
	case errors.Is(err, models.ErrAlreadyReviewed):
		respondError(w, http.StatusConflict, "You have already reviewed this place")
	case errors.Is(err, models.ErrUserNotFound):
		respondError(w, http.StatusUnauthorized, "User not found. Please log in again.")
	default:
		log.Printf("%s: %v", fallback, err)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found. Please log in again.")
		return
	}
	placeID := getParam(r, "place_id")

	rating, text, err := parseReviewBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.Service.CreateReview(r.Context(), userID, placeID, rating, text)
	if err != nil {
		respondServiceError(w, err, "Failed to create review")
		return
	}
	respondJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) GetPlaceReviews(w http.ResponseWriter, r *http.Request) {
	placeID := getParam(r, "place_id")
	params := listParamsFromRequest(r, 10)

	page, err := h.Service.GetPlaceReviews(r.Context(), placeID, params)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch reviews")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found. Please log in again.")
		return
	}
	placeID := getParam(r, "place_id")

	rating, text, err := parseReviewBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.Service.UpdateReview(r.Context(), userID, placeID, rating, text)
	if err != nil {
		respondServiceError(w, err, "Failed to update review")
		return
	}
	respondJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found. Please log in again.")
		return
	}
	placeID := getParam(r, "place_id")

	if err := h.Service.DeleteReview(r.Context(), userID, placeID); err != nil {
		respondServiceError(w, err, "Failed to delete review")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Review deleted successfully"})
}

func (h *ReviewHandler) GetAllReviews(w http.ResponseWriter, r *http.Request) {
	params := listParamsFromRequest(r, 20)

	page, err := h.Service.GetAllReviews(r.Context(), params)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch reviews")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *ReviewHandler) GetUserPlaceReview(w http.ResponseWriter, r *http.Request) {
	userID := getParam(r, "user_id")
	placeID := getParam(r, "place_id")

	review, err := h.Service.GetUserPlaceReview(r.Context(), userID, placeID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch review")
		return
	}
	respondJSON(w, http.StatusOK, review)
}

// GetMyPlaceReview serves the optional-auth variant: anonymous callers get
// the same not-reviewed answer an authenticated user without a review gets.
func (h *ReviewHandler) GetMyPlaceReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r)
	placeID := getParam(r, "place_id")

	review, err := h.Service.GetUserPlaceReview(r.Context(), userID, placeID)
	if err != nil {
		if errors.Is(err, models.ErrReviewNotFound) {
			respondError(w, http.StatusNotFound, "You have not reviewed this place yet")
			return
		}
		respondServiceError(w, err, "Failed to fetch review")
		return
	}
	respondJSON(w, http.StatusOK, review)
}
