package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"marketapi/internal/abr"
	"marketapi/internal/config"
	"marketapi/internal/model"
)

const savedEditMessage = "You have saved updates on your profile. " +
	"You must submit these changes to the Marketplace for review. " +
	"If you did not make any changes, select 'Discard all updates'."

// SupplierPage is a page of the supplier directory.
type SupplierPage struct {
	Items   []model.Supplier `json:"suppliers"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// SupplierService reads seller profiles.
type SupplierService interface {
	Get(ctx context.Context, code int64) (*model.Supplier, error)
	List(ctx context.Context, name string, page, perPage int) (*SupplierPage, error)
	// ABNUsed reports whether a supplier or an application already uses the ABN.
	ABNUsed(ctx context.Context, abn string) (bool, error)
	// ABNLookup returns the organisation name registered against the ABN.
	ABNLookup(ctx context.Context, abn string) (string, error)
	// Messages returns profile warnings for the supplier. Only admins and the supplier's own users may read them.
	Messages(ctx context.Context, code int64, user *model.User, skipApplicationCheck bool) (*model.SupplierMessages, error)
}

type supplierService struct {
	repos  Repositories
	lookup abr.Looker
	cfg    config.MarketplaceConfig
}

// NewSupplierService constructs a SupplierService.
func NewSupplierService(repos Repositories, lookup abr.Looker, cfg config.MarketplaceConfig) SupplierService {
	return &supplierService{repos: repos, lookup: lookup, cfg: cfg}
}

func (s *supplierService) Get(ctx context.Context, code int64) (*model.Supplier, error) {
	sup, err := s.repos.Suppliers.FindByCode(ctx, code)
	if err != nil {
		return nil, missing(err, "Supplier %d not found", code)
	}
	return sup, nil
}

func (s *supplierService) List(ctx context.Context, name string, page, perPage int) (*SupplierPage, error) {
	page, perPage, q, err := pageQuery(page, perPage, s.cfg.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	res, err := s.repos.Suppliers.List(ctx, strings.TrimSpace(name), q)
	if err != nil {
		return nil, err
	}
	return &SupplierPage{Items: res.Items, Total: res.Total, Page: page, PerPage: perPage}, nil
}

// normalizeABN removes all whitespace from abn.
func normalizeABN(abn string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, abn)
}

func (s *supplierService) ABNUsed(ctx context.Context, abn string) (bool, error) {
	abn = normalizeABN(abn)
	if abn == "" {
		return false, invalid("ABN is required")
	}
	_, err := s.repos.Suppliers.FindByABN(ctx, abn)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	return s.repos.Suppliers.ApplicationExistsForABN(ctx, abn)
}

func (s *supplierService) ABNLookup(ctx context.Context, abn string) (string, error) {
	abn = normalizeABN(abn)
	if abn == "" {
		return "", invalid("ABN is required")
	}
	name, err := s.lookup.OrganisationName(ctx, abn)
	if err != nil {
		if errors.Is(err, abr.ErrNotFound) {
			return "", notFound("No organisation found for ABN '%s'", abn)
		}
		return "", fmt.Errorf("abn lookup: %w", err)
	}
	return name, nil
}

func (s *supplierService) Messages(ctx context.Context, code int64, user *model.User, skipApplicationCheck bool) (*model.SupplierMessages, error) {
	if user == nil || (user.Role != model.RoleAdmin && supplierCode(user) != code) {
		return nil, forbidden("Unauthorised to view supplier messages")
	}
	if _, err := s.repos.Suppliers.FindByCode(ctx, code); err != nil {
		return nil, missing(err, "Supplier %d not found", code)
	}
	apps, err := s.repos.Suppliers.ApplicationsForSupplier(ctx, code, model.ApplicationTypeEdit)
	if err != nil {
		return nil, err
	}

	out := &model.SupplierMessages{
		Errors:   make([]model.SupplierMessage, 0),
		Warnings: make([]model.SupplierMessage, 0),
	}
	var saved, submitted bool
	for _, a := range apps {
		switch a.Status {
		case model.ApplicationSaved:
			saved = true
		case model.ApplicationSubmitted:
			submitted = true
		}
	}
	if saved {
		out.Warnings = append(out.Warnings, model.SupplierMessage{
			ID:       "SB001",
			Message:  savedEditMessage,
			Severity: "warning",
			Step:     "update",
		})
	}
	if submitted && !skipApplicationCheck {
		out.Warnings = out.Warnings[:0]
		out.Errors = out.Errors[:0]
	}
	return out, nil
}
