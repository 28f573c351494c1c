package service

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/sync/errgroup"

	"marketapi/internal/model"
)

const supplierStatusDeleted = "deleted"

// BriefUserSnapshot is the data BriefUserStatus evaluates, loaded ahead of time.
type BriefUserSnapshot struct {
	Supplier *model.Supplier
	// CategoryEvidence is the supplier's latest evidence for the brief's seller category.
	CategoryEvidence *model.Evidence
	Application      *model.Application
	// EvidenceForBrief is set when the supplier lodged evidence against this brief.
	EvidenceForBrief bool
	// DomainAssessmentForBrief is set when one of the supplier's domains was assessed because of this brief.
	DomainAssessmentForBrief bool
	// Responses holds the supplier's non-withdrawn responses to the brief.
	Responses []model.BriefResponse
}

// BriefUserStatus answers whether a user may respond to a brief.
type BriefUserStatus struct {
	brief *model.Brief
	user  *model.User
	snap  BriefUserSnapshot
}

// NewBriefUserStatus evaluates user against brief using snap.
func NewBriefUserStatus(brief *model.Brief, user *model.User, snap BriefUserSnapshot) *BriefUserStatus {
	return &BriefUserStatus{brief: brief, user: user, snap: snap}
}

func (s *BriefUserStatus) IsApprovedSeller() bool {
	return s.user != nil && s.user.Role == model.RoleSupplier &&
		s.snap.Supplier != nil && s.snap.Supplier.Status != supplierStatusDeleted
}

func (s *BriefUserStatus) IsRecruiterOnly() bool {
	return s.snap.Supplier.Recruiter() == "yes"
}

func (s *BriefUserStatus) IsAssessedInAnyCategory() bool {
	return len(s.snap.Supplier.AssessedDomains()) > 0
}

func (s *BriefUserStatus) IsAssessedForCategory() bool {
	cat := s.brief.SellerCategory()
	return cat > 0 && s.snap.Supplier.DomainStatus(cat) == model.SupplierDomainAssessed
}

func (s *BriefUserStatus) HasEvidenceInDraftForCategory() bool {
	return s.snap.CategoryEvidence != nil && s.snap.CategoryEvidence.Status() == model.EvidenceDraft
}

func (s *BriefUserStatus) IsAwaitingDomainAssessment() bool {
	return s.snap.CategoryEvidence != nil && s.snap.CategoryEvidence.Status() == model.EvidenceSubmitted
}

func (s *BriefUserStatus) IsAwaitingApplicationAssessment() bool {
	return s.snap.Application != nil && s.snap.Application.Status == model.ApplicationSubmitted
}

// HasBeenAssessedForBrief reports whether the supplier already went through an assessment raised by this brief.
func (s *BriefUserStatus) HasBeenAssessedForBrief() bool {
	if s.snap.EvidenceForBrief {
		return true
	}
	cat := s.brief.SellerCategory()
	return cat > 0 && s.snap.Supplier.DomainStatus(cat) == model.SupplierDomainRejected && s.snap.DomainAssessmentForBrief
}

func (s *BriefUserStatus) CanRespondToATMOpportunity() bool {
	if !s.IsApprovedSeller() || s.IsRecruiterOnly() {
		return false
	}
	switch s.brief.OpenTo() {
	case "all":
		return s.IsAssessedInAnyCategory()
	case "category":
		return s.IsAssessedForCategory()
	}
	return false
}

func (s *BriefUserStatus) CanRespondToRFXOrTrainingOpportunity() bool {
	return s.IsApprovedSeller() && !s.IsRecruiterOnly() &&
		s.brief.IsInvited(s.snap.Supplier.Code) && s.IsAssessedInAnyCategory()
}

func (s *BriefUserStatus) CanRespondToSpecialistOpportunity() bool {
	if !s.IsApprovedSeller() {
		return false
	}
	switch s.brief.OpenTo() {
	case "all":
		return s.IsRecruiterOnly() || s.IsAssessedForCategory()
	case "selected":
		if !s.brief.IsInvited(s.snap.Supplier.Code) {
			return false
		}
		return s.IsRecruiterOnly() || s.IsAssessedForCategory()
	}
	return false
}

// CanRespond applies the eligibility rule of the brief's lot.
func (s *BriefUserStatus) CanRespond() bool {
	switch s.brief.LotSlug {
	case model.LotSpecialist:
		return s.CanRespondToSpecialistOpportunity()
	case model.LotRFX, model.LotTraining:
		return s.CanRespondToRFXOrTrainingOpportunity()
	case model.LotATM:
		return s.CanRespondToATMOpportunity()
	}
	return s.IsApprovedSeller() && s.IsAssessedInAnyCategory()
}

func (s *BriefUserStatus) HasResponded() bool {
	return len(s.snap.Responses) > 0
}

// BriefUserStatusView is the JSON shape of a BriefUserStatus.
type BriefUserStatusView struct {
	IsApprovedSeller                bool `json:"isApprovedSeller"`
	IsRecruiterOnly                 bool `json:"isRecruiterOnly"`
	IsAssessedForCategory           bool `json:"isAssessedForCategory"`
	IsAssessedForAnyCategory        bool `json:"isAssessedForAnyCategory"`
	HasEvidenceInDraftForCategory   bool `json:"hasEvidenceInDraftForCategory"`
	IsAwaitingDomainAssessment      bool `json:"isAwaitingDomainAssessment"`
	IsAwaitingApplicationAssessment bool `json:"isAwaitingApplicationAssessment"`
	HasBeenAssessedForBrief         bool `json:"hasBeenAssessedForBrief"`
	CanRespond                      bool `json:"canRespond"`
	HasResponded                    bool `json:"hasResponded"`
}

func (s *BriefUserStatus) View() BriefUserStatusView {
	return BriefUserStatusView{
		IsApprovedSeller:                s.IsApprovedSeller(),
		IsRecruiterOnly:                 s.IsRecruiterOnly(),
		IsAssessedForCategory:           s.IsAssessedForCategory(),
		IsAssessedForAnyCategory:        s.IsAssessedInAnyCategory(),
		HasEvidenceInDraftForCategory:   s.HasEvidenceInDraftForCategory(),
		IsAwaitingDomainAssessment:      s.IsAwaitingDomainAssessment(),
		IsAwaitingApplicationAssessment: s.IsAwaitingApplicationAssessment(),
		HasBeenAssessedForBrief:         s.HasBeenAssessedForBrief(),
		CanRespond:                      s.CanRespond(),
		HasResponded:                    s.HasResponded(),
	}
}

// statusLoader materializes a BriefUserSnapshot.
type statusLoader struct {
	repos Repositories
}

// load fetches the supplier first, then the per-brief facts concurrently.
func (l statusLoader) load(ctx context.Context, brief *model.Brief, user *model.User) (*BriefUserStatus, error) {
	var snap BriefUserSnapshot

	if user.ApplicationID != nil {
		app, err := l.repos.Suppliers.FindApplication(ctx, *user.ApplicationID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		snap.Application = app
	}

	if !isSupplier(user) {
		return NewBriefUserStatus(brief, user, snap), nil
	}
	supplier, err := l.repos.Suppliers.FindByCode(ctx, *user.SupplierCode)
	if errors.Is(err, sql.ErrNoRows) {
		return NewBriefUserStatus(brief, user, snap), nil
	}
	if err != nil {
		return nil, err
	}
	snap.Supplier = supplier

	g, gctx := errgroup.WithContext(ctx)
	if cat := brief.SellerCategory(); cat > 0 {
		g.Go(func() error {
			ev, err := l.repos.Evidence.FindLatest(gctx, supplier.Code, cat)
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			snap.CategoryEvidence = ev
			return err
		})
	}
	g.Go(func() error {
		ok, err := l.repos.Evidence.ExistsForBrief(gctx, supplier.Code, brief.ID)
		snap.EvidenceForBrief = ok
		return err
	})
	g.Go(func() error {
		ok, err := l.repos.Briefs.HasDomainAssessmentForBrief(gctx, brief.ID, supplier.ID)
		snap.DomainAssessmentForBrief = ok
		return err
	})
	g.Go(func() error {
		rs, err := l.repos.Responses.ListForSupplierAndBrief(gctx, brief.ID, supplier.Code)
		snap.Responses = rs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewBriefUserStatus(brief, user, snap), nil
}
