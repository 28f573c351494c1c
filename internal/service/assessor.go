package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"marketapi/internal/logger"
	"marketapi/internal/model"
	"marketapi/internal/notify"
)

// AssessorInput is one entry of POST /brief/:id/assessors.
type AssessorInput struct {
	EmailAddress string `json:"email_address" validate:"required,email"`
	ViewDayRates bool   `json:"view_day_rates"`
}

// AssessorService manages the people evaluating responses to a brief.
type AssessorService interface {
	List(ctx context.Context, briefID int64, user *model.User) ([]model.BriefAssessor, error)
	Add(ctx context.Context, briefID int64, user *model.User, in []AssessorInput) ([]model.BriefAssessor, error)
}

type assessorService struct {
	repos Repositories
	rec   recorder
}

// NewAssessorService constructs an AssessorService.
func NewAssessorService(repos Repositories, n notify.Notifier, log *logger.Logger) AssessorService {
	return &assessorService{
		repos: repos,
		rec:   recorder{audit: repos.Audit, notifier: n, log: log.Component("assessor_service")},
	}
}

func (s *assessorService) owned(ctx context.Context, briefID int64, user *model.User) (*model.Brief, error) {
	b, err := s.repos.Briefs.FindByID(ctx, briefID)
	if err != nil {
		return nil, missing(err, "Invalid brief id '%d'", briefID)
	}
	if !b.HasUser(user.ID) {
		return nil, forbidden(msgBriefUnauthorised)
	}
	return b, nil
}

func (s *assessorService) List(ctx context.Context, briefID int64, user *model.User) ([]model.BriefAssessor, error) {
	if _, err := s.owned(ctx, briefID, user); err != nil {
		return nil, err
	}
	return s.repos.Assessors.ListForBrief(ctx, briefID)
}

func (s *assessorService) Add(ctx context.Context, briefID int64, user *model.User, in []AssessorInput) ([]model.BriefAssessor, error) {
	if len(in) == 0 {
		return nil, invalid("At least one assessor is required")
	}
	for i := range in {
		in[i].EmailAddress = strings.ToLower(strings.TrimSpace(in[i].EmailAddress))
		if err := validateStruct(&in[i]); err != nil {
			return nil, err
		}
	}
	b, err := s.owned(ctx, briefID, user)
	if err != nil {
		return nil, err
	}

	out := make([]model.BriefAssessor, 0, len(in))
	for _, a := range in {
		email := a.EmailAddress
		assessor := &model.BriefAssessor{BriefID: b.ID, EmailAddress: email, ViewDayRates: a.ViewDayRates}

		u, err := s.repos.Users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			id := u.ID
			assessor.UserID = &id
		case !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}

		saved, err := s.repos.Assessors.Create(ctx, assessor)
		if err != nil {
			return nil, err
		}
		s.rec.record(ctx, model.AuditCreateBriefAssessor, user.EmailAddress, "BriefAssessor", saved.ID, map[string]any{
			"briefId":       b.ID,
			"email_address": email,
		})
		out = append(out, *saved)
	}
	return out, nil
}
