package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cheikhmama/soundage/internal/core/domain"
	"github.com/cheikhmama/soundage/internal/core/ports"
)

// uniqueViolation is the postgres error code raised when two first-time
// submissions race on the poll+identity unique index.
const uniqueViolation = "23505"

type responseRepository struct {
	db *sql.DB
}

func NewResponseRepository(db *sql.DB) ports.ResponseRepository {
	return &responseRepository{
		db: db,
	}
}

func (r *responseRepository) FindByPollAndUser(ctx context.Context, pollID, userID uuid.UUID) (*domain.Response, error) {
	query := `
		SELECT id, poll_id, user_id, anonymous_id, ip_address, created_at
		FROM responses
		WHERE poll_id = $1 AND user_id = $2
	`
	return r.findOne(ctx, query, pollID, userID)
}

func (r *responseRepository) FindByPollAndAnonymousToken(ctx context.Context, pollID uuid.UUID, token string) (*domain.Response, error) {
	query := `
		SELECT id, poll_id, user_id, anonymous_id, ip_address, created_at
		FROM responses
		WHERE poll_id = $1 AND anonymous_id = $2
	`
	return r.findOne(ctx, query, pollID, token)
}

func (r *responseRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Response, error) {
	response := &domain.Response{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&response.ID, &response.PollID, &response.UserID, &response.AnonymousID,
		&response.IPAddress, &response.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find response: %w", err)
	}
	return response, nil
}

// Save persists the response and its answers as one transaction. New
// responses are inserted first; a unique-index violation there is translated
// to domain.ErrDuplicateResponse so the submission engine can retry. For an
// existing response the stored answers are replaced wholesale.
func (r *responseRepository) Save(ctx context.Context, response *domain.Response) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if response.ID == uuid.Nil {
		query := `
			INSERT INTO responses (poll_id, user_id, anonymous_id, ip_address)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`
		err := tx.QueryRowContext(ctx, query, response.PollID, response.UserID,
			response.AnonymousID, response.IPAddress).Scan(&response.ID, &response.CreatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return fmt.Errorf("%w: %v", domain.ErrDuplicateResponse, err)
			}
			return fmt.Errorf("failed to insert response: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE response_id = $1`, response.ID); err != nil {
			return fmt.Errorf("failed to clear answers: %w", err)
		}
	}

	queryAnswer := `
		INSERT INTO answers (response_id, question_id, option_id, text_value, numeric_value, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	stmt, err := tx.PrepareContext(ctx, queryAnswer)
	if err != nil {
		return fmt.Errorf("failed to prepare answer statement: %w", err)
	}
	defer stmt.Close()

	for i := range response.Answers {
		answer := &response.Answers[i]
		answer.ResponseID = response.ID
		err := stmt.QueryRowContext(ctx, answer.ResponseID, answer.QuestionID,
			answer.OptionID, answer.TextValue, answer.NumericValue, answer.Position).Scan(&answer.ID)
		if err != nil {
			return fmt.Errorf("failed to insert answer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *responseRepository) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Response, error) {
	query := `
		SELECT r.id, r.poll_id, r.user_id, r.anonymous_id, r.ip_address, r.created_at,
		       u.id, u.email, u.name, u.last_name
		FROM responses r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.poll_id = $1
		ORDER BY r.created_at, r.id
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var responses []*domain.Response
	byID := make(map[uuid.UUID]*domain.Response)
	for rows.Next() {
		response := &domain.Response{}
		var userID *uuid.UUID
		var email, name, lastName *string
		if err := rows.Scan(&response.ID, &response.PollID, &response.UserID, &response.AnonymousID,
			&response.IPAddress, &response.CreatedAt, &userID, &email, &name, &lastName); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		if userID != nil {
			response.User = &domain.User{ID: *userID}
			if email != nil {
				response.User.Email = *email
			}
			if name != nil {
				response.User.Name = *name
			}
			if lastName != nil {
				response.User.LastName = *lastName
			}
		}
		responses = append(responses, response)
		byID[response.ID] = response
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating responses: %w", err)
	}

	if len(responses) == 0 {
		return responses, nil
	}

	queryAnswers := `
		SELECT a.id, a.response_id, a.question_id, a.option_id, a.text_value, a.numeric_value, a.position
		FROM answers a
		JOIN responses r ON r.id = a.response_id
		WHERE r.poll_id = $1
		ORDER BY a.id
	`
	answerRows, err := r.db.QueryContext(ctx, queryAnswers, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer answerRows.Close()

	for answerRows.Next() {
		var answer domain.Answer
		if err := answerRows.Scan(&answer.ID, &answer.ResponseID, &answer.QuestionID,
			&answer.OptionID, &answer.TextValue, &answer.NumericValue, &answer.Position); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		if response, ok := byID[answer.ResponseID]; ok {
			response.Answers = append(response.Answers, answer)
		}
	}
	if err := answerRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answers: %w", err)
	}

	return responses, nil
}

func (r *responseRepository) ExistsForIdentity(ctx context.Context, pollID uuid.UUID, identity domain.VoterIdentity) (bool, error) {
	var query string
	var arg any
	if identity.IsAnonymous() {
		query = `SELECT 1 FROM responses WHERE poll_id = $1 AND anonymous_id = $2 LIMIT 1`
		arg = identity.AnonymousToken
	} else {
		query = `SELECT 1 FROM responses WHERE poll_id = $1 AND user_id = $2 LIMIT 1`
		arg = identity.UserID
	}

	var exists int
	err := r.db.QueryRowContext(ctx, query, pollID, arg).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing response: %w", err)
	}
	return true, nil
}

func (r *responseRepository) CountByPoll(ctx context.Context, pollID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses WHERE poll_id = $1`, pollID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return count, nil
}
