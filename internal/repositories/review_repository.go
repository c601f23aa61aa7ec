package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"tripwiseBack/internal/models"
)

// ReviewRepository persists reviews in Postgres. Each mutation runs inside a
// single transaction opened and closed here, so the commit/rollback boundary
// is visible at the call site of every statement.
type ReviewRepository struct {
	DB *sql.DB
}

// Sort columns are resolved through this whitelist; request values never reach
// the SQL text directly.
var reviewSortColumns = map[string]string{
	"rating":     "r.rating",
	"created_at": "r.created_at",
	"updated_at": "r.updated_at",
	"place_id":   "r.place_id",
}

const reviewColumns = `r.id, r.user_id, r.place_id, r.rating, r.review, r.created_at, r.updated_at, u.full_name, u.avatar`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReview(row rowScanner) (models.Review, error) {
	var rev models.Review
	err := row.Scan(&rev.ID, &rev.User.ID, &rev.PlaceID, &rev.Rating, &rev.Review,
		&rev.CreatedAt, &rev.UpdatedAt, &rev.User.FullName, &rev.User.Avatar)
	return rev, err
}

// orderClause resolves the validated sort parameters to SQL. The caller has
// already validated sortBy against its endpoint's allowed set; an unknown
// value here is a programming error.
func orderClause(sortBy, order string) (string, error) {
	column, ok := reviewSortColumns[sortBy]
	if !ok {
		return "", fmt.Errorf("unsupported sort column %q", sortBy)
	}
	direction := "DESC"
	if order == "asc" {
		direction = "ASC"
	}
	return column + " " + direction, nil
}

// translateConstraint maps Postgres constraint failures onto the store's
// error taxonomy so no caller ever inspects driver errors. The unique
// constraint is authoritative for duplicate detection; the pre-check in
// CreateReview is only a fast path.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return models.ErrAlreadyReviewed
		case "23503":
			return models.ErrUserNotFound
		}
	}
	return err
}

func (r *ReviewRepository) getByID(ctx context.Context, tx *sql.Tx, id string) (models.Review, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_reviews r
		JOIN users u ON r.user_id = u.id
		WHERE r.id = $1
	`, reviewColumns)
	return scanReview(tx.QueryRowContext(ctx, query, id))
}

// CreateReview inserts one review per (user, place). A concurrent create for
// the same pair loses at commit time and surfaces ErrAlreadyReviewed, the
// same error the pre-check produces.
func (r *ReviewRepository) CreateReview(ctx context.Context, userID, placeID string, rating int, text string) (models.Review, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Review{}, fmt.Errorf("begin create review: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_reviews WHERE user_id = $1 AND place_id = $2`,
		userID, placeID).Scan(&count); err != nil {
		return models.Review{}, fmt.Errorf("check existing review: %w", err)
	}
	if count > 0 {
		return models.Review{}, models.ErrAlreadyReviewed
	}

	id := uuid.New().String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_reviews (id, user_id, place_id, rating, review, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`, id, userID, placeID, rating, text)
	if err != nil {
		return models.Review{}, translateConstraint(err)
	}

	rev, err := r.getByID(ctx, tx, id)
	if err != nil {
		return models.Review{}, fmt.Errorf("read created review: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Review{}, translateConstraint(err)
	}
	return rev, nil
}

// GetReviewsByPlace returns one page of a place's reviews joined with the
// authoring user, plus the total row count. Count and page come from the same
// transaction snapshot so the paging metadata cannot disagree with the items.
func (r *ReviewRepository) GetReviewsByPlace(ctx context.Context, placeID string, params models.ListParams) ([]models.Review, int, error) {
	ordering, err := orderClause(params.SortBy, params.Order)
	if err != nil {
		return nil, 0, err
	}

	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin place reviews query: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_reviews WHERE place_id = $1`, placeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count place reviews: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM user_reviews r
		JOIN users u ON r.user_id = u.id
		WHERE r.place_id = $1
		ORDER BY %s
		LIMIT $2 OFFSET $3
	`, reviewColumns, ordering)
	rows, err := tx.QueryContext(ctx, query, placeID, params.Size, (params.Page-1)*params.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("query place reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan place review: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate place reviews: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit place reviews query: %w", err)
	}
	return reviews, total, nil
}

func (r *ReviewRepository) GetReviewByUserAndPlace(ctx context.Context, userID, placeID string) (models.Review, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_reviews r
		JOIN users u ON r.user_id = u.id
		WHERE r.user_id = $1 AND r.place_id = $2
	`, reviewColumns)
	rev, err := scanReview(r.DB.QueryRowContext(ctx, query, userID, placeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return models.Review{}, models.ErrReviewNotFound
		}
		return models.Review{}, fmt.Errorf("query review by user and place: %w", err)
	}
	return rev, nil
}

// isInvalidUUID reports whether the error is Postgres rejecting a malformed
// uuid literal. The user id arrives as an opaque path parameter, so a
// malformed one means the review cannot exist, not that the store failed.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// UpdateReview applies a partial update and returns the pre-update rating
// alongside the updated row, so the caller can decide whether the rating
// histogram needs adjusting. The row is locked for the duration of the
// transaction.
func (r *ReviewRepository) UpdateReview(ctx context.Context, userID, placeID string, rating *int, text *string) (int, models.Review, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, models.Review{}, fmt.Errorf("begin update review: %w", err)
	}
	defer tx.Rollback()

	var id string
	var oldRating int
	err = tx.QueryRowContext(ctx,
		`SELECT id, rating FROM user_reviews WHERE user_id = $1 AND place_id = $2 FOR UPDATE`,
		userID, placeID).Scan(&id, &oldRating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.Review{}, models.ErrReviewNotFound
		}
		return 0, models.Review{}, fmt.Errorf("lock review for update: %w", err)
	}

	newRating := oldRating
	if rating != nil {
		newRating = *rating
	}
	if text != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE user_reviews SET rating = $1, review = $2, updated_at = NOW() WHERE id = $3`,
			newRating, *text, id)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE user_reviews SET rating = $1, updated_at = NOW() WHERE id = $2`,
			newRating, id)
	}
	if err != nil {
		return 0, models.Review{}, fmt.Errorf("update review: %w", err)
	}

	rev, err := r.getByID(ctx, tx, id)
	if err != nil {
		return 0, models.Review{}, fmt.Errorf("read updated review: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, models.Review{}, fmt.Errorf("commit update review: %w", err)
	}
	return oldRating, rev, nil
}

// DeleteReview removes the row physically and returns the rating it carried
// for the histogram decrement.
func (r *ReviewRepository) DeleteReview(ctx context.Context, userID, placeID string) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete review: %w", err)
	}
	defer tx.Rollback()

	var rating int
	err = tx.QueryRowContext(ctx,
		`DELETE FROM user_reviews WHERE user_id = $1 AND place_id = $2 RETURNING rating`,
		userID, placeID).Scan(&rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrReviewNotFound
		}
		return 0, fmt.Errorf("delete review: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete review: %w", err)
	}
	return rating, nil
}

// ListAllReviews pages across every place. The user block additionally
// carries the email here; the listing exists for administrative use.
func (r *ReviewRepository) ListAllReviews(ctx context.Context, params models.ListParams) ([]models.Review, int, error) {
	ordering, err := orderClause(params.SortBy, params.Order)
	if err != nil {
		return nil, 0, err
	}

	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin all reviews query: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_reviews`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count all reviews: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, u.email
		FROM user_reviews r
		JOIN users u ON r.user_id = u.id
		ORDER BY %s
		LIMIT $1 OFFSET $2
	`, reviewColumns, ordering)
	rows, err := tx.QueryContext(ctx, query, params.Size, (params.Page-1)*params.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("query all reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var rev models.Review
		err := rows.Scan(&rev.ID, &rev.User.ID, &rev.PlaceID, &rev.Rating, &rev.Review,
			&rev.CreatedAt, &rev.UpdatedAt, &rev.User.FullName, &rev.User.Avatar, &rev.User.Email)
		if err != nil {
			return nil, 0, fmt.Errorf("scan all reviews row: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate all reviews: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit all reviews query: %w", err)
	}
	return reviews, total, nil
}
