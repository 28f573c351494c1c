package model

import "time"

// BriefResponse is a supplier's submission against a brief.
type BriefResponse struct {
	ID           int64          `json:"id"`
	BriefID      int64          `json:"briefId"`
	SupplierCode int64          `json:"supplierCode"`
	SupplierName string         `json:"supplierName,omitempty"`
	Data         map[string]any `json:"data"`
	CreatedAt    time.Time      `json:"createdAt"`
	WithdrawnAt  *time.Time     `json:"withdrawnAt,omitempty"`
}

// Withdrawn reports whether the response has been withdrawn.
func (r *BriefResponse) Withdrawn() bool {
	return r.WithdrawnAt != nil
}

// RespondToEmailAddress returns the contact address given in the response.
func (r *BriefResponse) RespondToEmailAddress() string {
	v, _ := r.Data["respondToEmailAddress"].(string)
	return v
}

// SupplierResponse is a row of the seller's response dashboard.
type SupplierResponse struct {
	ID          int64      `json:"id"`
	BriefID     int64      `json:"brief_id"`
	BriefName   string     `json:"name"`
	LotSlug     string     `json:"lot"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	WithdrawnAt *time.Time `json:"withdrawn_at,omitempty"`
}

// BriefResponseContact is the address a supplier wants brief updates sent to.
type BriefResponseContact struct {
	ID           int64  `json:"id"`
	BriefID      int64  `json:"brief_id"`
	SupplierCode int64  `json:"supplier_code"`
	EmailAddress string `json:"email_address"`
}

// BriefResponder is a supplier who responded to a closed brief.
type BriefResponder struct {
	SupplierCode int64    `json:"supplier_code"`
	SupplierName string   `json:"supplier_name"`
	Emails       []string `json:"-"`
}
