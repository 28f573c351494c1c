// Package model contains the marketplace domain records.
// Structs carry json tags only; persistence concerns live in the repository layer.
package model

import (
	"strings"
	"time"
)

// Role is the coarse-grained role a user signs in with.
type Role string

const (
	RoleBuyer     Role = "buyer"
	RoleSupplier  Role = "supplier"
	RoleAdmin     Role = "admin"
	RoleApplicant Role = "applicant"
)

// User is an authenticated marketplace account.
type User struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	EmailAddress  string    `json:"email_address"`
	Role          Role      `json:"role"`
	Active        bool      `json:"active"`
	SupplierCode  *int64    `json:"supplier_code,omitempty"`
	ApplicationID *int64    `json:"application_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// EmailDomain returns the lower-cased part after the last '@'.
func (u User) EmailDomain() string {
	return EmailDomain(u.EmailAddress)
}

// EmailDomain returns the lower-cased domain of an address, or "" if it has none.
func EmailDomain(address string) string {
	i := strings.LastIndex(address, "@")
	if i < 0 || i == len(address)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(address[i+1:]))
}
