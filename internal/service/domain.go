package service

import (
	"context"
	"strconv"
	"strings"

	"marketapi/internal/model"
)

// DomainService looks up assessment domains and procurement frameworks.
type DomainService interface {
	// Get resolves a numeric id or a case-insensitive domain name.
	Get(ctx context.Context, nameOrID string) (*model.Domain, error)
	Framework(ctx context.Context, slug string) (*model.Framework, error)
}

type domainService struct {
	repos Repositories
}

// NewDomainService constructs a DomainService.
func NewDomainService(repos Repositories) DomainService {
	return &domainService{repos: repos}
}

func (s *domainService) Get(ctx context.Context, nameOrID string) (*model.Domain, error) {
	key := strings.TrimSpace(nameOrID)
	if key == "" {
		return nil, invalid("Domain name or id is required")
	}
	var (
		d   *model.Domain
		err error
	)
	if id, perr := strconv.ParseInt(key, 10, 64); perr == nil {
		d, err = s.repos.Domains.FindByID(ctx, id)
	} else {
		d, err = s.repos.Domains.FindByName(ctx, key)
	}
	if err != nil {
		return nil, missing(err, "Domain '%s' not found", key)
	}
	return d, nil
}

func (s *domainService) Framework(ctx context.Context, slug string) (*model.Framework, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, invalid("Framework slug is required")
	}
	f, err := s.repos.Briefs.FindFramework(ctx, slug)
	if err != nil {
		return nil, missing(err, "Framework '%s' not found", slug)
	}
	return f, nil
}
