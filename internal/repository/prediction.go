package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/survivalcast/survivalcast-go/internal/model"
)

// PredictionRepository is the append-only ledger of predictions.
type PredictionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPredictionRepository creates a new PredictionRepository.
func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db, now: utcNow}
}

// Create appends p, setting its generated ID and creation time.
func (r *PredictionRepository) Create(ctx context.Context, p *model.Prediction) error {
	query := `INSERT INTO predictions
		(user_email, pclass, sex, age, sibsp, parch, fare, embarked, result, probability, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	createdAt := r.now()
	result, err := r.db.ExecContext(ctx, query,
		p.UserEmail,
		p.Pclass,
		p.Sex,
		p.Age,
		p.SibSp,
		p.Parch,
		p.Fare,
		p.Embarked,
		p.Result,
		p.Probability,
		createdAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	p.ID = id
	p.CreatedAt = createdAt
	return nil
}

// ListByUser returns every prediction owned by email, oldest first. Rows
// sharing a timestamp are ordered by ID.
func (r *PredictionRepository) ListByUser(ctx context.Context, email string) ([]model.Prediction, error) {
	query := `SELECT id, user_email, pclass, sex, age, sibsp, parch, fare, embarked, result, probability, created_at
		FROM predictions WHERE user_email = ? ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []model.Prediction
	for rows.Next() {
		var p model.Prediction
		if err := rows.Scan(
			&p.ID, &p.UserEmail, &p.Pclass, &p.Sex, &p.Age, &p.SibSp,
			&p.Parch, &p.Fare, &p.Embarked, &p.Result, &p.Probability, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

// Count returns the number of predictions across all users.
func (r *PredictionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&n)
	return n, err
}
