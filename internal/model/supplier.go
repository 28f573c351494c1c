package model

import "time"

const (
	SupplierDomainAssessed   = "assessed"
	SupplierDomainUnassessed = "unassessed"
	SupplierDomainRejected   = "rejected"

	FrameworkDigitalMarketplace = "digital-marketplace"
)

// Supplier is a seller organisation.
type Supplier struct {
	ID         int64            `json:"id"`
	Code       int64            `json:"code"`
	Name       string           `json:"name"`
	ABN        string           `json:"abn"`
	Status     string           `json:"status"`
	Data       map[string]any   `json:"data"`
	Frameworks []string         `json:"frameworks"`
	Domains    []SupplierDomain `json:"domains"`
	CreatedAt  time.Time        `json:"created_at"`
}

// SupplierDomain is a supplier's qualification status in one domain.
type SupplierDomain struct {
	ID         int64  `json:"id"`
	SupplierID int64  `json:"supplier_id"`
	DomainID   int64  `json:"domain_id"`
	DomainName string `json:"domain_name"`
	Status     string `json:"status"`
}

// Recruiter returns the supplier's recruiter flag: "yes", "no" or "both".
func (s *Supplier) Recruiter() string {
	if s == nil || s.Data == nil {
		return ""
	}
	v, _ := s.Data["recruiter"].(string)
	return v
}

// HasFramework reports whether the supplier is on the given framework.
func (s *Supplier) HasFramework(slug string) bool {
	if s == nil {
		return false
	}
	for _, f := range s.Frameworks {
		if f == slug {
			return true
		}
	}
	return false
}

// AssessedDomains returns the domains with status assessed.
func (s *Supplier) AssessedDomains() []SupplierDomain {
	out := make([]SupplierDomain, 0)
	if s == nil {
		return out
	}
	for _, d := range s.Domains {
		if d.Status == SupplierDomainAssessed {
			out = append(out, d)
		}
	}
	return out
}

// DomainStatus returns the status of the supplier domain, or "" when the supplier does not hold it.
func (s *Supplier) DomainStatus(domainID int64) string {
	if s == nil {
		return ""
	}
	for _, d := range s.Domains {
		if d.DomainID == domainID {
			return d.Status
		}
	}
	return ""
}

// Application is a seller application or profile edit awaiting review.
type Application struct {
	ID           int64     `json:"id"`
	SupplierCode *int64    `json:"supplier_code,omitempty"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	ApplicationSaved     = "saved"
	ApplicationSubmitted = "submitted"
	ApplicationTypeEdit  = "edit"
)

// SupplierMessage is a warning or error shown on the seller dashboard.
type SupplierMessage struct {
	ID       string `json:"id"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Step     string `json:"step"`
}

// SupplierMessages groups dashboard messages by severity.
type SupplierMessages struct {
	Errors   []SupplierMessage `json:"errors"`
	Warnings []SupplierMessage `json:"warnings"`
}
