package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sphere-team/sphere-backend/internal/domain"
	"github.com/sphere-team/sphere-backend/internal/repository"
)

const matchColumns = `
	id, event_id, city, is_global, user_a_id, user_b_id,
	compatibility_score, match_type, explanation, icebreaker,
	status, user_a_notified, user_b_notified, created_at`

type matchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

// orderPair normalizes an unordered pair so the smaller UUID is always
// user_a. Together with the unique index on (scope, user_a, user_b)
// this makes A-B and B-A the same row.
func orderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(a.String(), b.String()) > 0 {
		return b, a
	}
	return a, b
}

func (r *matchRepository) Create(ctx context.Context, match *domain.Match) error {
	if match.UserAID == match.UserBID {
		return domain.ErrSelfMatch
	}
	if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	if match.Status == "" {
		match.Status = domain.MatchStatusPending
	}
	match.UserAID, match.UserBID = orderPair(match.UserAID, match.UserBID)

	query := `
		INSERT INTO matches (
			id, event_id, city, is_global, user_a_id, user_b_id,
			compatibility_score, match_type, explanation, icebreaker, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	return r.db.QueryRowContext(
		ctx, query,
		match.ID, match.EventID, match.City, match.IsGlobal,
		match.UserAID, match.UserBID, match.CompatibilityScore,
		match.MatchType, match.Explanation, match.Icebreaker, match.Status,
	).Scan(&match.CreatedAt)
}

func (r *matchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	var match domain.Match
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	err := r.db.GetContext(ctx, &match, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

// scopePredicate renders the cohort-scope filter for the matches
// table. Event matches carry event_id, city matches carry city with a
// NULL event_id, global matches carry is_global.
func scopePredicate(cohort domain.Cohort, argPos int) (string, []interface{}) {
	switch cohort.Kind {
	case domain.CohortEvent:
		return fmt.Sprintf("event_id = $%d", argPos), []interface{}{cohort.EventID}
	case domain.CohortCity:
		return fmt.Sprintf("event_id IS NULL AND city = $%d", argPos), []interface{}{cohort.City}
	default:
		return "is_global = true", nil
	}
}

func (r *matchRepository) Exists(ctx context.Context, cohort domain.Cohort, userAID, userBID uuid.UUID) (bool, error) {
	predicate, args := scopePredicate(cohort, 3)
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE ((user_a_id = $1 AND user_b_id = $2) OR (user_a_id = $2 AND user_b_id = $1))
			  AND %s
		)
	`, predicate)

	queryArgs := append([]interface{}{userAID, userBID}, args...)

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, queryArgs...); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *matchRepository) GetUserMatches(ctx context.Context, userID uuid.UUID, status *domain.MatchStatus) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + ` FROM matches
		WHERE (user_a_id = $1 OR user_b_id = $1)
	`
	args := []interface{}{userID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY compatibility_score DESC, created_at DESC`

	var matches []*domain.Match
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MatchStatus) (*domain.Match, error) {
	if !domain.ValidMatchStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	var match domain.Match
	query := `
		UPDATE matches SET status = $1 WHERE id = $2
		RETURNING ` + matchColumns
	err := r.db.GetContext(ctx, &match, query, status, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) GetUnnotified(ctx context.Context, userID uuid.UUID) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + ` FROM matches
		WHERE (user_a_id = $1 AND user_a_notified = false)
		   OR (user_b_id = $1 AND user_b_notified = false)
		ORDER BY created_at
	`
	var matches []*domain.Match
	if err := r.db.SelectContext(ctx, &matches, query, userID); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) MarkNotified(ctx context.Context, id uuid.UUID, side domain.NotifySide) error {
	column := "user_a_notified"
	if side == domain.NotifySideB {
		column = "user_b_notified"
	}
	// Flags only ever go to true; replays are harmless.
	query := fmt.Sprintf(`UPDATE matches SET %s = true WHERE id = $1`, column)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}
