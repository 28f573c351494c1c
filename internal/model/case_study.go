package model

import "time"

// CaseStudy is an example of past work a supplier submits for a domain.
type CaseStudy struct {
	ID              int64          `json:"id"`
	SupplierCode    int64          `json:"supplier_code"`
	SupplierName    string         `json:"supplier_name"`
	DomainName      string         `json:"service"`
	Data            map[string]any `json:"data"`
	Status          string         `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	AssessmentCount int            `json:"assessment_count"`
}

// CaseStudyAssessment is one assessor's review of a case study.
type CaseStudyAssessment struct {
	ID               int64     `json:"id"`
	CaseStudyID      int64     `json:"case_study_id"`
	UserID           int64     `json:"user_id"`
	Username         string    `json:"username,omitempty"`
	Status           string    `json:"status"`
	Comment          string    `json:"comment"`
	ApprovedCriteria []int64   `json:"approved_criteria"`
	CreatedAt        time.Time `json:"created_at"`
}
