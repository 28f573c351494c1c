package model

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

const (
	EvidenceDraft     = "draft"
	EvidenceSubmitted = "submitted"
	EvidenceAssessed  = "assessed"
	EvidenceRejected  = "rejected"
)

// Evidence is a supplier's claim of competence against a domain's criteria.
type Evidence struct {
	ID           int64          `json:"id"`
	DomainID     int64          `json:"domain_id"`
	SupplierCode int64          `json:"supplier_code"`
	BriefID      *int64         `json:"brief_id,omitempty"`
	UserID       *int64         `json:"user_id,omitempty"`
	Data         map[string]any `json:"data"`
	CreatedAt    time.Time      `json:"created_at"`
	SubmittedAt  *time.Time     `json:"submitted_at,omitempty"`
	ApprovedAt   *time.Time     `json:"approved_at,omitempty"`
	RejectedAt   *time.Time     `json:"rejected_at,omitempty"`
}

// EvidenceStatus derives the status from the lifecycle timestamps.
func EvidenceStatus(submitted, approved, rejected *time.Time) string {
	switch {
	case approved != nil:
		return EvidenceAssessed
	case rejected != nil:
		return EvidenceRejected
	case submitted != nil:
		return EvidenceSubmitted
	default:
		return EvidenceDraft
	}
}

// Status returns the evidence status.
func (e *Evidence) Status() string {
	return EvidenceStatus(e.SubmittedAt, e.ApprovedAt, e.RejectedAt)
}

// Criteria returns the ids of the criteria the evidence addresses.
func (e *Evidence) Criteria() []string {
	return criteriaIDs(e.Data["criteria"])
}

func criteriaIDs(v any) []string {
	out := make([]string, 0)
	list, _ := v.([]any)
	for _, item := range list {
		switch id := item.(type) {
		case string:
			out = append(out, id)
		case float64:
			out = append(out, strconv.FormatInt(int64(id), 10))
		case int64:
			out = append(out, strconv.FormatInt(id, 10))
		}
	}
	return out
}

// EvidenceSummary is an evidence row joined with its supplier, brief and domain.
type EvidenceSummary struct {
	ID                 int64               `json:"id"`
	Status             string              `json:"status"`
	CreatedAt          time.Time           `json:"created_at"`
	SubmittedAt        *time.Time          `json:"submitted_at"`
	ApprovedAt         *time.Time          `json:"approved_at"`
	RejectedAt         *time.Time          `json:"rejected_at"`
	Data               map[string]any      `json:"data"`
	MaxDailyRate       string              `json:"maxDailyRate"`
	SupplierName       string              `json:"supplier_name"`
	SupplierCode       int64               `json:"supplier_code"`
	BriefID            *int64              `json:"brief_id"`
	BriefClosedAt      *time.Time          `json:"brief_closed_at"`
	BriefTitle         string              `json:"brief_title"`
	DomainName         string              `json:"domain_name"`
	DomainID           int64               `json:"domain_id"`
	DomainPriceMaximum float64             `json:"domain_price_maximum"`
	CriteriaNeeded     *int                `json:"criteriaNeeded,omitempty"`
	Assessment         *EvidenceAssessment `json:"assessment"`
	FeedbackCreatedAt  *time.Time          `json:"feedback_created_at,omitempty"`
}

// EvidenceAssessment is an assessor's verdict on submitted evidence.
type EvidenceAssessment struct {
	ID         int64          `json:"id"`
	EvidenceID int64          `json:"evidence_id"`
	UserID     *int64         `json:"user_id,omitempty"`
	Status     string         `json:"status"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"created_at"`
}

// FailedCriteria returns the criterion ids recorded under data.failed_criteria, sorted.
func (a *EvidenceAssessment) FailedCriteria() []string {
	if a == nil {
		return nil
	}
	failed, _ := a.Data["failed_criteria"].(map[string]any)
	out := make([]string, 0, len(failed))
	for k := range failed {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// EvidenceDetail is a single evidence record enriched for the assessor view.
type EvidenceDetail struct {
	Evidence
	Status           string                     `json:"status"`
	DomainName       string                     `json:"domain_name"`
	DomainCriteria   map[string]CriteriaSummary `json:"domain_criteria"`
	PreviousID       *int64                     `json:"previous_evidence_id,omitempty"`
	ApprovedCriteria []string                   `json:"approved_criteria"`
}

// CriteriaSummary is the per-criterion entry of EvidenceDetail.DomainCriteria.
type CriteriaSummary struct {
	Name string `json:"name"`
}

// CriteriaKey formats a criterion id as a map key.
func CriteriaKey(id int64) string {
	return fmt.Sprintf("%d", id)
}
