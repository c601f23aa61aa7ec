package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"tripwiseBack/internal/cache"
	"tripwiseBack/internal/models"
)

// Logger is the pair of printf-style loggers main constructs.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// ReviewStore is the persistence surface the service orchestrates. Mutations
// are transactional inside the store; a returned error means nothing was
// committed.
type ReviewStore interface {
	CreateReview(ctx context.Context, userID, placeID string, rating int, text string) (models.Review, error)
	GetReviewsByPlace(ctx context.Context, placeID string, params models.ListParams) ([]models.Review, int, error)
	GetReviewByUserAndPlace(ctx context.Context, userID, placeID string) (models.Review, error)
	UpdateReview(ctx context.Context, userID, placeID string, rating *int, text *string) (int, models.Review, error)
	DeleteReview(ctx context.Context, userID, placeID string) (int, error)
	ListAllReviews(ctx context.Context, params models.ListParams) ([]models.Review, int, error)
}

// ReviewCache is the fail-open listing cache. Implementations must never
// surface a cache failure into the request path.
type ReviewCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	InvalidatePlace(ctx context.Context, placeID string)
}

// PlaceChecker is the existence oracle over the external graph store.
type PlaceChecker interface {
	PlaceExists(ctx context.Context, placeID string) (bool, error)
}

// HistogramUpdater adjusts a place's aggregate star counts.
type HistogramUpdater interface {
	Update(ctx context.Context, placeID string, oldRating, newRating *int) error
}

// PreferenceRefresher invalidates a user's recommendation cache.
type PreferenceRefresher interface {
	Refresh(ctx context.Context, userID string) error
}

// ReviewService orchestrates every review operation: validation first, then
// the place-existence check, then the transactional store mutation, then the
// best-effort propagation into derived caches.
type ReviewService struct {
	Store      ReviewStore
	Cache      ReviewCache
	Places     PlaceChecker
	Histogram  HistogramUpdater
	Preference PreferenceRefresher
	Log        Logger
	CacheTTL   time.Duration
}

const DefaultCacheTTL = time.Hour

var placeSortFields = map[string]bool{"rating": true, "updated_at": true, "created_at": true}
var allSortFields = map[string]bool{"rating": true, "updated_at": true, "created_at": true, "place_id": true}

const (
	placeSortMessage = "Invalid sort_by. Must be one of: rating, updated_at, created_at"
	allSortMessage   = "Invalid sort_by. Must be one of: rating, updated_at, created_at, place_id"
)

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return &models.ValidationError{Msg: "Rating must be between 1 and 5"}
	}
	return nil
}

func validateListParams(params models.ListParams, sortFields map[string]bool, sortMessage string) error {
	if params.Page < 1 {
		return &models.ValidationError{Msg: "Page must be greater than 0"}
	}
	if params.Size < 1 || params.Size > 100 {
		return &models.ValidationError{Msg: "Size must be between 1 and 100"}
	}
	if !sortFields[params.SortBy] {
		return &models.ValidationError{Msg: sortMessage}
	}
	if params.Order != "asc" && params.Order != "desc" {
		return &models.ValidationError{Msg: "Invalid order. Must be one of: asc, desc"}
	}
	return nil
}

func (s *ReviewService) cacheTTL() time.Duration {
	if s.CacheTTL > 0 {
		return s.CacheTTL
	}
	return DefaultCacheTTL
}

// checkPlace fails closed: when the oracle cannot answer, the request fails
// rather than letting a write through for a place that may not exist.
func (s *ReviewService) checkPlace(ctx context.Context, placeID string) error {
	exists, err := s.Places.PlaceExists(ctx, placeID)
	if err != nil {
		return fmt.Errorf("place existence check: %w", err)
	}
	if !exists {
		return models.ErrPlaceNotFound
	}
	return nil
}

// propagate runs the post-commit side effects in a fixed order: histogram
// update, cache invalidation, preference refresh. Each is best-effort; the
// committed review row is the source of truth and the derived state self-heals
// on the next read or recompute, so failures are logged and swallowed.
func (s *ReviewService) propagate(ctx context.Context, placeID, userID string, oldRating, newRating *int) {
	if oldRating != nil || newRating != nil {
		if err := s.Histogram.Update(ctx, placeID, oldRating, newRating); err != nil {
			s.Log.Errorf("rating histogram update for place %s: %v", placeID, err)
		}
	}
	s.Cache.InvalidatePlace(ctx, placeID)
	if err := s.Preference.Refresh(ctx, userID); err != nil {
		s.Log.Errorf("preference cache refresh for user %s: %v", userID, err)
	}
}

func (s *ReviewService) CreateReview(ctx context.Context, userID, placeID string, rating *int, text *string) (models.Review, error) {
	if rating == nil || text == nil {
		return models.Review{}, &models.ValidationError{Msg: "Rating and review are required"}
	}
	if err := validateRating(*rating); err != nil {
		return models.Review{}, err
	}
	if err := s.checkPlace(ctx, placeID); err != nil {
		return models.Review{}, err
	}

	review, err := s.Store.CreateReview(ctx, userID, placeID, *rating, *text)
	if err != nil {
		return models.Review{}, err
	}

	s.propagate(ctx, placeID, userID, nil, rating)
	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, userID, placeID string, rating *int, text *string) (models.Review, error) {
	if rating == nil && text == nil {
		return models.Review{}, &models.ValidationError{Msg: "At least one field (rating or review) must be provided"}
	}
	if rating != nil {
		if err := validateRating(*rating); err != nil {
			return models.Review{}, err
		}
	}
	if err := s.checkPlace(ctx, placeID); err != nil {
		return models.Review{}, err
	}

	oldRating, review, err := s.Store.UpdateReview(ctx, userID, placeID, rating, text)
	if err != nil {
		return models.Review{}, err
	}

	// The histogram only moves when the rating actually changed; the listings
	// and preference cache go stale on any update.
	if rating != nil && *rating != oldRating {
		s.propagate(ctx, placeID, userID, &oldRating, rating)
	} else {
		s.propagate(ctx, placeID, userID, nil, nil)
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, userID, placeID string) error {
	if err := s.checkPlace(ctx, placeID); err != nil {
		return err
	}

	rating, err := s.Store.DeleteReview(ctx, userID, placeID)
	if err != nil {
		return err
	}

	s.propagate(ctx, placeID, userID, &rating, nil)
	return nil
}

func listCacheParams(params models.ListParams) map[string]string {
	return map[string]string{
		"page":    strconv.Itoa(params.Page),
		"size":    strconv.Itoa(params.Size),
		"sort_by": params.SortBy,
		"order":   params.Order,
	}
}

func buildPage(items []models.Review, params models.ListParams, total int) models.ReviewPage {
	totalPages := total / params.Size
	if total%params.Size > 0 {
		totalPages++
	}
	if items == nil {
		items = []models.Review{}
	}
	return models.ReviewPage{
		Items:      items,
		Page:       params.Page,
		Size:       params.Size,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

// GetPlaceReviews serves one page of a place's reviews, from cache when a
// previous read with the same parameters populated it.
func (s *ReviewService) GetPlaceReviews(ctx context.Context, placeID string, params models.ListParams) (models.ReviewPage, error) {
	if err := validateListParams(params, placeSortFields, placeSortMessage); err != nil {
		return models.ReviewPage{}, err
	}
	if err := s.checkPlace(ctx, placeID); err != nil {
		return models.ReviewPage{}, err
	}

	key := cache.ReviewsKey(placeID, listCacheParams(params))
	var page models.ReviewPage
	if s.Cache.Get(ctx, key, &page) {
		return page, nil
	}

	items, total, err := s.Store.GetReviewsByPlace(ctx, placeID, params)
	if err != nil {
		return models.ReviewPage{}, err
	}
	page = buildPage(items, params, total)
	s.Cache.Set(ctx, key, page, s.cacheTTL())
	return page, nil
}

// GetAllReviews pages across every place. No place check applies; the listing
// is cached under its own namespace so writes can invalidate it wholesale.
func (s *ReviewService) GetAllReviews(ctx context.Context, params models.ListParams) (models.ReviewPage, error) {
	if err := validateListParams(params, allSortFields, allSortMessage); err != nil {
		return models.ReviewPage{}, err
	}

	key := cache.AllReviewsKey(listCacheParams(params))
	var page models.ReviewPage
	if s.Cache.Get(ctx, key, &page) {
		return page, nil
	}

	items, total, err := s.Store.ListAllReviews(ctx, params)
	if err != nil {
		return models.ReviewPage{}, err
	}
	page = buildPage(items, params, total)
	s.Cache.Set(ctx, key, page, s.cacheTTL())
	return page, nil
}

// GetUserPlaceReview returns one user's review of one place. An empty userID
// (anonymous caller on the my-review endpoint) reads as not-reviewed once the
// place itself checks out.
func (s *ReviewService) GetUserPlaceReview(ctx context.Context, userID, placeID string) (models.Review, error) {
	if err := s.checkPlace(ctx, placeID); err != nil {
		return models.Review{}, err
	}
	if userID == "" {
		return models.Review{}, models.ErrReviewNotFound
	}
	return s.Store.GetReviewByUserAndPlace(ctx, userID, placeID)
}
