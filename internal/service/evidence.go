package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"marketapi/internal/logger"
	"marketapi/internal/model"
	"marketapi/internal/notify"
)

// EvidenceService serves the evidence assessment queue.
type EvidenceService interface {
	// List returns evidence of every supplier, or of one when supplierCode is set.
	List(ctx context.Context, supplierCode *int64) ([]model.EvidenceSummary, error)
	Submitted(ctx context.Context) ([]model.EvidenceSummary, error)
	Get(ctx context.Context, id int64) (*model.EvidenceDetail, error)
	DeleteDraft(ctx context.Context, id int64, user *model.User) error
}

type evidenceService struct {
	repos Repositories
	rec   recorder
}

// NewEvidenceService constructs an EvidenceService.
func NewEvidenceService(repos Repositories, n notify.Notifier, log *logger.Logger) EvidenceService {
	return &evidenceService{
		repos: repos,
		rec:   recorder{audit: repos.Audit, notifier: n, log: log.Component("evidence_service")},
	}
}

// CriteriaNeeded returns how many criteria evidence at rate must meet in domain.
// Rates above the domain's price maximum need one more. ok is false when rate is not a positive number.
func CriteriaNeeded(domain *model.Domain, rate string) (n int, ok bool) {
	r, err := strconv.ParseFloat(strings.TrimSpace(rate), 64)
	if err != nil || r <= 0 {
		return 0, false
	}
	n = domain.CriteriaNeeded
	if domain.PriceMaximum > 0 && r > domain.PriceMaximum {
		n++
	}
	return n, true
}

func (s *evidenceService) List(ctx context.Context, supplierCode *int64) ([]model.EvidenceSummary, error) {
	rows, err := s.repos.Evidence.ListAll(ctx, supplierCode)
	if err != nil {
		return nil, err
	}

	domains := make(map[int64]*model.Domain)
	for i := range rows {
		e := &rows[i]

		d, ok := domains[e.DomainID]
		if !ok {
			d, err = s.repos.Domains.FindByID(ctx, e.DomainID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return nil, err
			}
			domains[e.DomainID] = d
		}
		if d != nil {
			if n, ok := CriteriaNeeded(d, e.MaxDailyRate); ok {
				e.CriteriaNeeded = &n
			}
		}

		if e.Status != model.EvidenceAssessed && e.Status != model.EvidenceRejected {
			continue
		}
		a, err := s.repos.Evidence.FindAssessment(ctx, e.ID)
		switch {
		case err == nil:
			e.Assessment = a
			created := a.CreatedAt
			e.FeedbackCreatedAt = &created
		case !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}
	}
	return rows, nil
}

func (s *evidenceService) Submitted(ctx context.Context) ([]model.EvidenceSummary, error) {
	return s.repos.Evidence.ListSubmitted(ctx)
}

func (s *evidenceService) Get(ctx context.Context, id int64) (*model.EvidenceDetail, error) {
	e, err := s.repos.Evidence.FindByID(ctx, id)
	if err != nil {
		return nil, missing(err, "Evidence %d not found", id)
	}
	d, err := s.repos.Domains.FindByID(ctx, e.DomainID)
	if err != nil {
		return nil, missing(err, "Domain %d not found", e.DomainID)
	}

	detail := &model.EvidenceDetail{
		Evidence:         *e,
		Status:           e.Status(),
		DomainName:       d.Name,
		DomainCriteria:   make(map[string]model.CriteriaSummary, len(d.Criteria)),
		ApprovedCriteria: make([]string, 0),
	}
	for _, c := range d.Criteria {
		detail.DomainCriteria[model.CriteriaKey(c.ID)] = model.CriteriaSummary{Name: c.Name}
	}

	prev, err := s.repos.Evidence.FindPreviousAssessed(ctx, e.ID, e.SupplierCode, e.DomainID)
	if errors.Is(err, sql.ErrNoRows) {
		return detail, nil
	}
	if err != nil {
		return nil, err
	}
	detail.PreviousID = &prev.ID

	var failed []string
	a, err := s.repos.Evidence.FindAssessment(ctx, prev.ID)
	switch {
	case err == nil:
		failed = a.FailedCriteria()
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}
	detail.ApprovedCriteria = approvedCriteria(e.Criteria(), prev.Criteria(), failed)
	return detail, nil
}

// approvedCriteria returns the criteria of current that were submitted before and did not fail then.
func approvedCriteria(current, previous, failed []string) []string {
	before := make(map[string]bool, len(previous))
	for _, c := range previous {
		before[c] = true
	}
	for _, c := range failed {
		delete(before, c)
	}
	out := make([]string, 0)
	for _, c := range current {
		if before[c] {
			out = append(out, c)
		}
	}
	return out
}

func (s *evidenceService) DeleteDraft(ctx context.Context, id int64, user *model.User) error {
	e, err := s.repos.Evidence.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invalid("Evidence cannot be deleted")
		}
		return err
	}
	if !isSupplier(user) || e.SupplierCode != *user.SupplierCode {
		return forbidden("Unauthorised to delete evidence")
	}
	if e.Status() != model.EvidenceDraft {
		return invalid("Evidence cannot be deleted")
	}
	if err := s.repos.Evidence.Delete(ctx, e.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invalid("Evidence cannot be deleted")
		}
		return err
	}
	s.rec.record(ctx, model.AuditEvidenceDraftDeleted, user.EmailAddress, "Evidence", e.ID, map[string]any{
		"id":           e.ID,
		"domainId":     e.DomainID,
		"briefId":      e.BriefID,
		"status":       e.Status(),
		"supplierCode": e.SupplierCode,
		"data":         e.Data,
	})
	return nil
}
