package service

import (
	"context"

	"marketapi/internal/logger"
	"marketapi/internal/model"
	"marketapi/internal/notify"
)

// CaseStudyAssessmentRequest is the body of the assessment create and update routes.
type CaseStudyAssessmentRequest struct {
	Status           string  `json:"status" validate:"required,oneof=approved rejected"`
	Comment          string  `json:"comment"`
	ApprovedCriteria []int64 `json:"approved_criteria"`
}

// CaseStudyService manages admin assessments of supplier case studies.
type CaseStudyService interface {
	Unassessed(ctx context.Context) ([]model.CaseStudy, error)
	// Assessments lists the assessments of a case study, only the caller's when own is set.
	Assessments(ctx context.Context, caseStudyID int64, user *model.User, own bool) ([]model.CaseStudyAssessment, error)
	CreateAssessment(ctx context.Context, caseStudyID int64, user *model.User, req CaseStudyAssessmentRequest) (*model.CaseStudyAssessment, error)
	UpdateAssessment(ctx context.Context, id int64, user *model.User, req CaseStudyAssessmentRequest) (*model.CaseStudyAssessment, error)
	DeleteAssessment(ctx context.Context, id int64, user *model.User) error
}

type caseStudyService struct {
	repos Repositories
	rec   recorder
}

// NewCaseStudyService constructs a CaseStudyService.
func NewCaseStudyService(repos Repositories, n notify.Notifier, log *logger.Logger) CaseStudyService {
	return &caseStudyService{
		repos: repos,
		rec:   recorder{audit: repos.Audit, notifier: n, log: log.Component("case_study_service")},
	}
}

const assessmentObject = "CaseStudyAssessment"

func (s *caseStudyService) Unassessed(ctx context.Context) ([]model.CaseStudy, error) {
	return s.repos.CaseStudies.ListUnassessed(ctx)
}

func (s *caseStudyService) Assessments(ctx context.Context, caseStudyID int64, user *model.User, own bool) ([]model.CaseStudyAssessment, error) {
	if _, err := s.repos.CaseStudies.FindByID(ctx, caseStudyID); err != nil {
		return nil, missing(err, "Case study %d not found", caseStudyID)
	}
	var userID *int64
	if own {
		userID = &user.ID
	}
	return s.repos.CaseStudies.ListAssessments(ctx, caseStudyID, userID)
}

func (s *caseStudyService) CreateAssessment(ctx context.Context, caseStudyID int64, user *model.User, req CaseStudyAssessmentRequest) (*model.CaseStudyAssessment, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	if _, err := s.repos.CaseStudies.FindByID(ctx, caseStudyID); err != nil {
		return nil, missing(err, "Case study %d not found", caseStudyID)
	}
	saved, err := s.repos.CaseStudies.CreateAssessment(ctx, &model.CaseStudyAssessment{
		CaseStudyID:      caseStudyID,
		UserID:           user.ID,
		Status:           req.Status,
		Comment:          req.Comment,
		ApprovedCriteria: uniqueIDs(req.ApprovedCriteria),
		CreatedAt:        now(),
	})
	if err != nil {
		return nil, err
	}
	s.rec.record(ctx, model.AuditCreateCaseStudyAssessment, user.EmailAddress, assessmentObject, saved.ID, map[string]any{
		"caseStudyId":      caseStudyID,
		"status":           saved.Status,
		"approvedCriteria": saved.ApprovedCriteria,
	})
	return saved, nil
}

func (s *caseStudyService) UpdateAssessment(ctx context.Context, id int64, user *model.User, req CaseStudyAssessmentRequest) (*model.CaseStudyAssessment, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	a, err := s.repos.CaseStudies.FindAssessment(ctx, id)
	if err != nil {
		return nil, missing(err, "Case study assessment %d not found", id)
	}

	want := uniqueIDs(req.ApprovedCriteria)
	add, remove := diffIDs(a.ApprovedCriteria, want)
	a.Status = req.Status
	a.Comment = req.Comment
	if err := s.repos.CaseStudies.UpdateAssessment(ctx, a, add, remove); err != nil {
		return nil, missing(err, "Case study assessment %d not found", id)
	}
	a.ApprovedCriteria = want
	s.rec.record(ctx, model.AuditUpdateCaseStudyAssessment, user.EmailAddress, assessmentObject, a.ID, map[string]any{
		"status":  a.Status,
		"added":   add,
		"removed": remove,
	})
	return a, nil
}

func (s *caseStudyService) DeleteAssessment(ctx context.Context, id int64, user *model.User) error {
	a, err := s.repos.CaseStudies.FindAssessment(ctx, id)
	if err != nil {
		return missing(err, "Case study assessment %d not found", id)
	}
	if err := s.repos.CaseStudies.DeleteAssessment(ctx, a.ID); err != nil {
		return missing(err, "Case study assessment %d not found", id)
	}
	s.rec.record(ctx, model.AuditDeleteCaseStudyAssessment, user.EmailAddress, assessmentObject, a.ID, map[string]any{
		"caseStudyId": a.CaseStudyID,
	})
	return nil
}

// diffIDs returns the ids of want missing from have, and the ids of have missing from want.
func diffIDs(have, want []int64) (add, remove []int64) {
	in := func(ids []int64) map[int64]bool {
		m := make(map[int64]bool, len(ids))
		for _, id := range ids {
			m[id] = true
		}
		return m
	}
	h, w := in(have), in(want)
	add, remove = make([]int64, 0), make([]int64, 0)
	for id := range w {
		if !h[id] {
			add = append(add, id)
		}
	}
	for id := range h {
		if !w[id] {
			remove = append(remove, id)
		}
	}
	sortIDs(add)
	sortIDs(remove)
	return add, remove
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}
