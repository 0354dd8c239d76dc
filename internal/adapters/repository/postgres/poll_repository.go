package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cheikhmama/soundage/internal/core/domain"
	"github.com/cheikhmama/soundage/internal/core/ports"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	settings, err := marshalSettings(poll.Settings)
	if err != nil {
		return err
	}

	queryPoll := `
		INSERT INTO polls (id, title, description, is_active, allow_anonymous, starts_at, ends_at, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(ctx, queryPoll, poll.ID, poll.Title, poll.Description,
		poll.IsActive, poll.AllowAnonymous, poll.StartsAt, poll.EndsAt, settings,
		poll.CreatedAt, poll.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	if err := insertQuestions(ctx, tx, poll.Questions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *pollRepository) Update(ctx context.Context, poll *domain.Poll, replaceQuestions bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	settings, err := marshalSettings(poll.Settings)
	if err != nil {
		return err
	}

	query := `
		UPDATE polls
		SET title = $2, description = $3, is_active = $4, allow_anonymous = $5,
		    starts_at = $6, ends_at = $7, settings = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := tx.ExecContext(ctx, query, poll.ID, poll.Title, poll.Description,
		poll.IsActive, poll.AllowAnonymous, poll.StartsAt, poll.EndsAt, settings, poll.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrPollNotFound
	}

	if replaceQuestions {
		if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE poll_id = $1`, poll.ID); err != nil {
			return fmt.Errorf("failed to clear questions: %w", err)
		}
		if err := insertQuestions(ctx, tx, poll.Questions); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	queryPoll := `
		SELECT id, title, description, is_active, allow_anonymous, starts_at, ends_at, settings, created_at, updated_at
		FROM polls
		WHERE id = $1
	`

	var poll domain.Poll
	var settings []byte
	err := r.db.QueryRowContext(ctx, queryPoll, id).Scan(
		&poll.ID, &poll.Title, &poll.Description, &poll.IsActive, &poll.AllowAnonymous,
		&poll.StartsAt, &poll.EndsAt, &settings, &poll.CreatedAt, &poll.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	if err := unmarshalSettings(settings, &poll); err != nil {
		return nil, err
	}

	questions, err := r.fetchQuestions(ctx, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Questions = questions

	return &poll, nil
}

func (r *pollRepository) ListActive(ctx context.Context) ([]*domain.Poll, error) {
	query := `
		SELECT id, title, description, is_active, allow_anonymous, starts_at, ends_at, settings, created_at, updated_at
		FROM polls
		WHERE is_active = TRUE
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active polls: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) List(ctx context.Context, filter ports.PollFilter) ([]*domain.Poll, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if s := strings.TrimSpace(filter.Search); s != "" {
		p := arg("%" + strings.ToLower(s) + "%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(COALESCE(description, '')) LIKE %s)", p, p))
	}
	if filter.Active != nil {
		conditions = append(conditions, "is_active = "+arg(*filter.Active))
	}
	if filter.StartFrom != nil {
		conditions = append(conditions, "(starts_at IS NULL OR starts_at >= "+arg(*filter.StartFrom)+")")
	}
	if filter.EndBy != nil {
		conditions = append(conditions, "(ends_at IS NULL OR ends_at <= "+arg(*filter.EndBy)+")")
	}

	query := `
		SELECT id, title, description, is_active, allow_anonymous, starts_at, ends_at, settings, created_at, updated_at
		FROM polls
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

func (r *pollRepository) scanPolls(ctx context.Context, rows *sql.Rows) ([]*domain.Poll, error) {
	var polls []*domain.Poll
	for rows.Next() {
		var poll domain.Poll
		var settings []byte
		if err := rows.Scan(&poll.ID, &poll.Title, &poll.Description, &poll.IsActive, &poll.AllowAnonymous,
			&poll.StartsAt, &poll.EndsAt, &settings, &poll.CreatedAt, &poll.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		if err := unmarshalSettings(settings, &poll); err != nil {
			return nil, err
		}

		questions, err := r.fetchQuestions(ctx, poll.ID)
		if err != nil {
			return nil, err
		}
		poll.Questions = questions

		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}

func (r *pollRepository) fetchQuestions(ctx context.Context, pollID uuid.UUID) ([]domain.Question, error) {
	queryQuestions := `
		SELECT id, poll_id, type, title, is_required, allow_multiple, sort_order
		FROM questions
		WHERE poll_id = $1
		ORDER BY sort_order, id
	`
	rows, err := r.db.QueryContext(ctx, queryQuestions, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.PollID, &q.Type, &q.Title, &q.IsRequired, &q.AllowMultiple, &q.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	for i := range questions {
		options, err := r.fetchOptions(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Options = options
	}

	return questions, nil
}

func (r *pollRepository) fetchOptions(ctx context.Context, questionID uuid.UUID) ([]domain.Option, error) {
	queryOptions := `
		SELECT id, question_id, type, text_content, image_url, numeric_value, sort_order, weight
		FROM options
		WHERE question_id = $1
		ORDER BY sort_order, id
	`
	rows, err := r.db.QueryContext(ctx, queryOptions, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get options: %w", err)
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.ID, &opt.QuestionID, &opt.Type, &opt.TextContent, &opt.ImageURL,
			&opt.NumericValue, &opt.SortOrder, &opt.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}

func insertQuestions(ctx context.Context, tx *sql.Tx, questions []domain.Question) error {
	queryQuestion := `
		INSERT INTO questions (id, poll_id, type, title, is_required, allow_multiple, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	queryOption := `
		INSERT INTO options (id, question_id, type, text_content, image_url, numeric_value, sort_order, weight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, q := range questions {
		if _, err := tx.ExecContext(ctx, queryQuestion, q.ID, q.PollID, q.Type, q.Title,
			q.IsRequired, q.AllowMultiple, q.SortOrder); err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
		for _, opt := range q.Options {
			if _, err := tx.ExecContext(ctx, queryOption, opt.ID, opt.QuestionID, opt.Type,
				opt.TextContent, opt.ImageURL, opt.NumericValue, opt.SortOrder, opt.Weight); err != nil {
				return fmt.Errorf("failed to insert option: %w", err)
			}
		}
	}
	return nil
}

func marshalSettings(settings map[string]any) ([]byte, error) {
	if settings == nil {
		return nil, nil
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return data, nil
}

func unmarshalSettings(data []byte, poll *domain.Poll) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &poll.Settings); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return nil
}
