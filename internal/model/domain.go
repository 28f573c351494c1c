package model

// Domain is a skill category suppliers are assessed in.
type Domain struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	PriceMinimum   float64          `json:"price_minimum"`
	PriceMaximum   float64          `json:"price_maximum"`
	CriteriaNeeded int              `json:"criteria_needed"`
	Criteria       []DomainCriteria `json:"criteria"`
}

// DomainCriteria is one assessment criterion of a domain.
type DomainCriteria struct {
	ID          int64  `json:"id"`
	DomainID    int64  `json:"domain_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Essential   bool   `json:"essential"`
}
