package repository

import (
	"context"
	"time"

	"marketapi/internal/model"
)

// BriefRepository persists briefs and the rows hanging off them.
type BriefRepository interface {
	Create(ctx context.Context, b *model.Brief) (*model.Brief, error)
	// Update stores data, published_at and closed_at of an existing brief.
	Update(ctx context.Context, b *model.Brief) error
	FindByID(ctx context.Context, id int64) (*model.Brief, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Brief], error)
	ListForUser(ctx context.Context, userID int64) ([]model.Brief, error)
	// ListClosedPendingNotice returns published briefs closed by now whose buyers were not yet told.
	ListClosedPendingNotice(ctx context.Context, now time.Time) ([]model.Brief, error)
	// FrameworkStatus returns the status of the framework offering the lot, or sql.ErrNoRows.
	FrameworkStatus(ctx context.Context, frameworkSlug, lotSlug string) (string, error)
	// FindFramework returns a framework with its lot slugs, or sql.ErrNoRows.
	FindFramework(ctx context.Context, slug string) (*model.Framework, error)
	// HasDomainAssessmentForBrief reports whether a domain assessment of the supplier was raised for the brief.
	HasDomainAssessmentForBrief(ctx context.Context, briefID, supplierID int64) (bool, error)
}

// BriefResponseRepository persists supplier responses and response contacts.
type BriefResponseRepository interface {
	Create(ctx context.Context, r *model.BriefResponse) (*model.BriefResponse, error)
	FindByID(ctx context.Context, id int64) (*model.BriefResponse, error)
	Withdraw(ctx context.Context, id int64, at time.Time) error
	// ListForBrief returns responses to a brief; withdrawn rows are excluded.
	ListForBrief(ctx context.Context, briefID int64) ([]model.BriefResponse, error)
	ListForSupplierAndBrief(ctx context.Context, briefID, supplierCode int64) ([]model.BriefResponse, error)
	ListForSupplier(ctx context.Context, supplierCode int64) ([]model.SupplierResponse, error)
	CountForBrief(ctx context.Context, briefID int64) (int, error)

	FindContact(ctx context.Context, briefID, supplierCode int64) (*model.BriefResponseContact, error)
	SaveContact(ctx context.Context, c *model.BriefResponseContact) (*model.BriefResponseContact, error)
}

// BriefAssessorRepository persists brief assessors.
type BriefAssessorRepository interface {
	ListForBrief(ctx context.Context, briefID int64) ([]model.BriefAssessor, error)
	Create(ctx context.Context, a *model.BriefAssessor) (*model.BriefAssessor, error)
}

// QuestionRepository persists seller questions and published answers.
type QuestionRepository interface {
	ListQuestions(ctx context.Context, briefID int64) ([]model.BriefQuestion, error)
	FindQuestion(ctx context.Context, id int64) (*model.BriefQuestion, error)
	ListAnswers(ctx context.Context, briefID int64) ([]model.BriefClarificationQuestion, error)
	CreateAnswer(ctx context.Context, q *model.BriefClarificationQuestion) (*model.BriefClarificationQuestion, error)
}
