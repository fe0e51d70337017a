package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/service/quiz"
)

// QuizRepo implements quiz.Repository against PostgreSQL.
type QuizRepo struct {
	db        *sqlx.DB
	campaigns *CampaignRepo
}

// NewQuizRepo creates a Postgres-backed question repository.
func NewQuizRepo(db *sqlx.DB) *QuizRepo {
	return &QuizRepo{db: db, campaigns: NewCampaignRepo(db)}
}

func (r *QuizRepo) DoorExists(ctx context.Context, campaignID, doorID string) (bool, error) {
	return r.campaigns.DoorExists(ctx, campaignID, doorID)
}

func (r *QuizRepo) List(ctx context.Context, doorID string) ([]domain.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, door_id, position, type, prompt, options, correct_answer, ai_generated, created_at
		FROM questions
		WHERE door_id = $1
		ORDER BY position
	`, doorID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var q domain.Question
		var opts pq.StringArray
		if err := rows.Scan(&q.ID, &q.DoorID, &q.Position, &q.Type, &q.Prompt, &opts,
			&q.CorrectAnswer, &q.AIGenerated, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Options = []string(opts)
		out = append(out, q)
	}
	return out, rows.Err()
}

// Replace swaps the door's questions inside one transaction. The door row
// is locked first so concurrent saves for the same door run one after the
// other instead of colliding on (door_id, position).
func (r *QuizRepo) Replace(ctx context.Context, doorID string, qs []domain.Question) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var one int
	if err := tx.GetContext(ctx, &one, `SELECT 1 FROM doors WHERE id = $1 FOR UPDATE`, doorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.ErrNotFound
		}
		return fmt.Errorf("lock door: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE door_id = $1`, doorID); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	for _, q := range qs {
		opts := q.Options
		if opts == nil {
			opts = []string{}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO questions
				(id, door_id, position, type, prompt, options, correct_answer, ai_generated, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, q.ID, doorID, q.Position, q.Type, q.Prompt, pq.Array(opts),
			q.CorrectAnswer, q.AIGenerated, q.CreatedAt); err != nil {
			return fmt.Errorf("insert question %d: %w", q.Position, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
