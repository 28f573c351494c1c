package postgres

import (
	"context"
	"database/sql"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// QuestionPostgres is a PostgreSQL implementation of repository.QuestionRepository.
type QuestionPostgres struct {
	db *sql.DB
}

// NewQuestionPostgres creates a new QuestionPostgres repository.
func NewQuestionPostgres(db *sql.DB) *QuestionPostgres {
	return &QuestionPostgres{db: db}
}

var _ repository.QuestionRepository = (*QuestionPostgres)(nil)

// ListQuestions returns seller questions on a brief, newest first.
func (r *QuestionPostgres) ListQuestions(ctx context.Context, briefID int64) ([]model.BriefQuestion, error) {
	const q = `
		SELECT q.id, q.brief_id, q.supplier_code, s.name, COALESCE(q.data->>'question', ''), q.created_at
		FROM brief_questions q
		JOIN suppliers s ON s.code = q.supplier_code
		WHERE q.brief_id = $1
		ORDER BY q.created_at DESC, q.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, briefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BriefQuestion, 0)
	for rows.Next() {
		var bq model.BriefQuestion
		if err := rows.Scan(&bq.ID, &bq.BriefID, &bq.SupplierCode, &bq.SupplierName, &bq.Question, &bq.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, bq)
	}
	return out, rows.Err()
}

// FindQuestion loads one seller question.
func (r *QuestionPostgres) FindQuestion(ctx context.Context, id int64) (*model.BriefQuestion, error) {
	const q = `
		SELECT q.id, q.brief_id, q.supplier_code, s.name, COALESCE(q.data->>'question', ''), q.created_at
		FROM brief_questions q
		JOIN suppliers s ON s.code = q.supplier_code
		WHERE q.id = $1
	`
	var bq model.BriefQuestion
	err := r.db.QueryRowContext(ctx, q, id).Scan(&bq.ID, &bq.BriefID, &bq.SupplierCode, &bq.SupplierName, &bq.Question, &bq.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &bq, nil
}

// ListAnswers returns published clarification answers, newest first.
func (r *QuestionPostgres) ListAnswers(ctx context.Context, briefID int64) ([]model.BriefClarificationQuestion, error) {
	const q = `
		SELECT id, brief_id, user_id, question, answer, published_at
		FROM brief_clarification_questions
		WHERE brief_id = $1
		ORDER BY published_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, briefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BriefClarificationQuestion, 0)
	for rows.Next() {
		var a model.BriefClarificationQuestion
		if err := rows.Scan(&a.ID, &a.BriefID, &a.UserID, &a.Question, &a.Answer, &a.PublishedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAnswer publishes a clarification answer.
func (r *QuestionPostgres) CreateAnswer(ctx context.Context, a *model.BriefClarificationQuestion) (*model.BriefClarificationQuestion, error) {
	const q = `
		INSERT INTO brief_clarification_questions (brief_id, user_id, question, answer, published_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	out := *a
	if err := r.db.QueryRowContext(ctx, q, a.BriefID, a.UserID, a.Question, a.Answer, a.PublishedAt).Scan(&out.ID); err != nil {
		return nil, err
	}
	return &out, nil
}
