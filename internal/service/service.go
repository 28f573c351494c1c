// Package service holds the marketplace business rules. Services sit between the HTTP handlers
// and the repositories; they return *Error values classified by ErrNotFound, ErrForbidden,
// ErrValidation and ErrConflict.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"marketapi/internal/logger"
	"marketapi/internal/model"
	"marketapi/internal/notify"
	"marketapi/internal/repository"
)

var now = func() time.Time { return time.Now().UTC() }

// Repositories bundles the data access dependencies of the services.
type Repositories struct {
	Users       repository.UserRepository
	Suppliers   repository.SupplierRepository
	Domains     repository.DomainRepository
	Briefs      repository.BriefRepository
	Responses   repository.BriefResponseRepository
	Assessors   repository.BriefAssessorRepository
	Questions   repository.QuestionRepository
	Teams       repository.TeamRepository
	Evidence    repository.EvidenceRepository
	CaseStudies repository.CaseStudyRepository
	Audit       repository.AuditRepository
}

// recorder writes audit events and queues notifications. Failures are logged and never
// fail the calling operation.
type recorder struct {
	audit    repository.AuditRepository
	notifier notify.Notifier
	log      *logger.Logger
}

func (r recorder) record(ctx context.Context, t model.AuditType, user, objectType string, objectID int64, data map[string]any) {
	e := &model.AuditEvent{
		Type:       t,
		User:       user,
		Data:       data,
		ObjectType: objectType,
		ObjectID:   objectID,
		CreatedAt:  now(),
	}
	if err := r.audit.Create(ctx, e); err != nil {
		r.log.Error("audit event not recorded", "event", "audit_failed", "audit_type", string(t),
			"object_type", objectType, "object_id", objectID, "error", err)
	}
}

func (r recorder) send(ctx context.Context, n *notify.Notification) bool {
	if err := r.notifier.Enqueue(ctx, n); err != nil {
		r.log.Error("notification not queued", "event", "notify_failed", "kind", string(n.Kind), "error", err)
		return false
	}
	return true
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct checks the validate tags of a request and reports the first failure.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return invalid("The %q value was not found but is required", fe.Field())
	case "email":
		return invalid("%q must be a valid email address", fe.Field())
	case "oneof":
		return invalid("%q must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return invalid("%q must have at least %s item(s)", fe.Field(), fe.Param())
	default:
		return invalid("Field %q is invalid", fe.Field())
	}
}

const (
	fallbackPerPage = 20
	maxPerPage      = 100
	maxOffset       = math.MaxInt32
)

// pageQuery normalises 1-based paging input. perPage falls back to def and is capped at
// maxPerPage; a page whose offset would pass maxOffset is a validation error.
func pageQuery(page, perPage, def int) (int, int, repository.PageQuery, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = def
	}
	if perPage <= 0 {
		perPage = fallbackPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page-1 > maxOffset/perPage {
		return 0, 0, repository.PageQuery{}, invalid("Page %d is out of range", page)
	}
	return page, perPage, repository.PageQuery{Limit: perPage, Offset: (page - 1) * perPage}, nil
}

func isEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// permissions enforces team permissions for buyers.
type permissions struct {
	teams repository.TeamRepository
}

// require lets users outside any team act, as well as team leads. Other members need perm.
func (p permissions) require(ctx context.Context, user *model.User, perm model.Permission) error {
	m, err := p.teams.MembershipForUser(ctx, user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if !m.Has(perm) {
		return forbidden("You do not have permission to %s", strings.ReplaceAll(string(perm), "_", " "))
	}
	return nil
}

func isSupplier(user *model.User) bool {
	return user != nil && user.Role == model.RoleSupplier && user.SupplierCode != nil
}

func supplierCode(user *model.User) int64 {
	if user == nil || user.SupplierCode == nil {
		return 0
	}
	return *user.SupplierCode
}
