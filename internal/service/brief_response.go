package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"marketapi/internal/config"
	"marketapi/internal/logger"
	"marketapi/internal/model"
	"marketapi/internal/notify"
	"marketapi/internal/storage"
)

const (
	fallbackContentType = "binary/octet-stream"
	sniffLen            = 3072
	responseObject      = "BriefResponse"
	answerRequired      = "answer_required"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// BriefResponses is a brief together with the caller's responses to it.
type BriefResponses struct {
	Brief          *model.Brief          `json:"brief"`
	BriefResponses []model.BriefResponse `json:"briefResponses"`
}

// Document is a stored brief response attachment.
type Document struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// BriefResponseService covers the supplier side of briefs.
type BriefResponseService interface {
	// CanRespond returns the supplier and brief when user may respond to the brief.
	CanRespond(ctx context.Context, briefID int64, user *model.User) (*model.Supplier, *model.Brief, error)
	Create(ctx context.Context, briefID int64, user *model.User, data map[string]any) (*model.BriefResponse, error)
	Get(ctx context.Context, id int64, user *model.User) (*model.BriefResponse, error)
	Withdraw(ctx context.Context, id int64, user *model.User) (*model.BriefResponse, error)
	ListForBrief(ctx context.Context, briefID int64, user *model.User) (*BriefResponses, error)
	ListForSupplier(ctx context.Context, user *model.User) ([]model.SupplierResponse, error)

	UploadDocument(ctx context.Context, briefID, code int64, slug string, user *model.User, r io.Reader, size int64) (string, error)
	DownloadDocument(ctx context.Context, briefID, code int64, slug string, user *model.User) (*Document, error)

	GetContact(ctx context.Context, briefID int64, user *model.User) (*model.BriefResponseContact, error)
	UpdateContact(ctx context.Context, briefID int64, user *model.User, email string) (*model.BriefResponseContact, error)
}

type briefResponseService struct {
	repos  Repositories
	store  storage.Storage
	rec    recorder
	status statusLoader
	cfg    config.MarketplaceConfig
	log    *logger.Logger
}

// NewBriefResponseService constructs a BriefResponseService.
func NewBriefResponseService(repos Repositories, store storage.Storage, n notify.Notifier, cfg config.MarketplaceConfig, log *logger.Logger) BriefResponseService {
	log = log.Component("brief_response_service")
	return &briefResponseService{
		repos:  repos,
		store:  store,
		rec:    recorder{audit: repos.Audit, notifier: n, log: log},
		status: statusLoader{repos: repos},
		cfg:    cfg,
		log:    log,
	}
}

func (s *briefResponseService) genericDomain(domain string) bool {
	for _, d := range s.cfg.GenericEmailDomains {
		if d == domain {
			return true
		}
	}
	return false
}

// selectedByEmail applies the someSellers and oneSeller selectors.
func (s *briefResponseService) selectedByEmail(b *model.Brief, user *model.User) bool {
	email := strings.ToLower(strings.TrimSpace(user.EmailAddress))
	domain := user.EmailDomain()
	if s.genericDomain(domain) {
		domain = ""
	}
	switch b.SellerSelector() {
	case "someSellers":
		for _, addr := range b.SellerEmailList() {
			if addr == email || (domain != "" && model.EmailDomain(addr) == domain) {
				return true
			}
		}
		return false
	case "oneSeller":
		addr := b.SellerEmail()
		return addr == email || (domain != "" && model.EmailDomain(addr) == domain)
	}
	return true
}

func (s *briefResponseService) CanRespond(ctx context.Context, briefID int64, user *model.User) (*model.Supplier, *model.Brief, error) {
	b, err := s.repos.Briefs.FindByID(ctx, briefID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, invalid("Invalid brief ID '%d'", briefID)
		}
		return nil, nil, err
	}
	if b.StatusAt(now()) != model.BriefStatusLive {
		return nil, nil, invalid("Brief must be live")
	}
	if b.FrameworkStatus != model.FrameworkStatusLive {
		return nil, nil, invalid("Brief framework must be live")
	}
	if !isSupplier(user) {
		return nil, nil, forbidden("Only supplier role users can respond to briefs")
	}

	supplier, err := s.repos.Suppliers.FindByCode(ctx, *user.SupplierCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, forbidden("Invalid supplier Code '%d'", *user.SupplierCode)
		}
		return nil, nil, err
	}

	if !s.selectedByEmail(b, user) {
		return nil, nil, forbidden("Supplier not selected for this brief")
	}

	switch b.LotSlug {
	case model.LotRFX, model.LotATM, model.LotSpecialist, model.LotTraining:
		st, err := s.status.load(ctx, b, user)
		if err != nil {
			return nil, nil, err
		}
		if !st.CanRespond() {
			return nil, nil, forbidden("Supplier is not eligible")
		}
	}

	if !supplier.HasFramework(model.FrameworkDigitalMarketplace) || len(supplier.AssessedDomains()) == 0 {
		return nil, nil, invalid("Supplier does not have Digital Marketplace framework " +
			"or does not have at least one assessed domain")
	}

	existing, err := s.repos.Responses.ListForSupplierAndBrief(ctx, b.ID, supplier.Code)
	if err != nil {
		return nil, nil, err
	}
	if b.IsSpecialist() {
		if max := s.cfg.SpecialistMaxResponses; len(existing) >= max {
			return nil, nil, invalid("There are already %d brief responses for supplier '%d'", max, supplier.Code)
		}
	} else if len(existing) > 0 {
		return nil, nil, invalid("Brief response already exists for supplier '%d'", supplier.Code)
	}
	return supplier, b, nil
}

// validateResponse returns field errors keyed by data key.
func validateResponse(b *model.Brief, data map[string]any) map[string]string {
	errs := make(map[string]string)

	email, _ := data["respondToEmailAddress"].(string)
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs["respondToEmailAddress"] = answerRequired
	case !isEmail(email):
		errs["respondToEmailAddress"] = "invalid_format"
	}

	if want := b.EssentialRequirements(); want > 0 {
		answers, _ := data["essentialRequirements"].([]any)
		if len(answers) != want || !allAnswered(answers) {
			errs["essentialRequirements"] = answerRequired
		}
	}

	if b.IsSpecialist() {
		if name, _ := data["specialistName"].(string); strings.TrimSpace(name) == "" {
			errs["specialistName"] = answerRequired
		}
		rate, ok := numeric(data["dayRate"])
		switch {
		case !ok:
			errs["dayRate"] = answerRequired
		case b.MaxRate() > 0 && rate > b.MaxRate():
			errs["dayRate"] = "greater_than_max_rate"
		}
	}
	return errs
}

func allAnswered(answers []any) bool {
	for _, a := range answers {
		switch v := a.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return false
			}
		case map[string]any:
			if len(v) == 0 {
				return false
			}
		case nil:
			return false
		}
	}
	return true
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func responseErrorMessage(errs map[string]string) string {
	var msg string
	if errs["essentialRequirements"] == answerRequired {
		msg = "Essential requirements must be completed"
		delete(errs, "essentialRequirements")
	}
	if len(errs) > 0 {
		b, _ := json.Marshal(errs)
		msg += string(b)
	}
	return msg
}

func (s *briefResponseService) briefURL(b *model.Brief) string {
	prefix := s.cfg.FrontendAddress
	if b.LotSlug == model.LotRFX || b.LotSlug == model.LotATM {
		prefix += "/2"
	}
	return fmt.Sprintf("%s/%s/opportunities/%d", prefix, b.FrameworkSlug, b.ID)
}

func (s *briefResponseService) Create(ctx context.Context, briefID int64, user *model.User, data map[string]any) (*model.BriefResponse, error) {
	supplier, b, err := s.CanRespond(ctx, briefID, user)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	if errs := validateResponse(b, data); len(errs) > 0 {
		return nil, invalid("%s", responseErrorMessage(errs))
	}

	created, err := s.repos.Responses.Create(ctx, &model.BriefResponse{
		BriefID:      b.ID,
		SupplierCode: supplier.Code,
		Data:         data,
		CreatedAt:    now(),
	})
	if err != nil {
		return nil, err
	}

	to := created.RespondToEmailAddress()
	if _, err := s.repos.Responses.FindContact(ctx, b.ID, supplier.Code); errors.Is(err, sql.ErrNoRows) {
		if _, err := s.repos.Responses.SaveContact(ctx, &model.BriefResponseContact{
			BriefID: b.ID, SupplierCode: supplier.Code, EmailAddress: to,
		}); err != nil {
			s.log.Warn("brief response contact not saved", "event", "contact_failed", "brief_id", b.ID, "error", err)
		}
	}

	title := notify.Truncate(b.Title(), 30)
	s.rec.send(ctx, &notify.Notification{
		Kind:    notify.KindBriefResponseReceived,
		To:      []string{to},
		Subject: fmt.Sprintf("You've applied for %s successfully!", title),
		Params: map[string]any{
			"brief_url":     s.briefURL(b),
			"brief_title":   title,
			"supplier_name": supplier.Name,
			"organisation":  b.Data["organisation"],
		},
	})
	s.rec.record(ctx, model.AuditCreateBriefResponse, user.EmailAddress, responseObject, created.ID, map[string]any{
		"briefResponseId":   created.ID,
		"briefResponseJson": data,
	})
	return created, nil
}

// own returns the response when it belongs to the user's supplier.
func (s *briefResponseService) own(ctx context.Context, id int64, user *model.User) (*model.BriefResponse, error) {
	r, err := s.repos.Responses.FindByID(ctx, id)
	if err != nil {
		return nil, missing(err, "Brief response not found")
	}
	if !isSupplier(user) || r.SupplierCode != *user.SupplierCode {
		return nil, notFound("Brief response not found")
	}
	return r, nil
}

func (s *briefResponseService) Get(ctx context.Context, id int64, user *model.User) (*model.BriefResponse, error) {
	r, err := s.own(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if r.Withdrawn() {
		return nil, invalid("Brief response withdrawn")
	}
	return r, nil
}

func (s *briefResponseService) Withdraw(ctx context.Context, id int64, user *model.User) (*model.BriefResponse, error) {
	r, err := s.own(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if r.Withdrawn() {
		return nil, invalid("Brief response already withdrawn")
	}
	at := now()
	if err := s.repos.Responses.Withdraw(ctx, r.ID, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalid("Brief response already withdrawn")
		}
		return nil, err
	}
	r.WithdrawnAt = &at
	s.rec.record(ctx, model.AuditUpdateBriefResponse, user.EmailAddress, responseObject, r.ID, map[string]any{
		"briefResponseId": r.ID,
		"withdrawn_at":    at,
	})
	return r, nil
}

func (s *briefResponseService) ListForBrief(ctx context.Context, briefID int64, user *model.User) (*BriefResponses, error) {
	b, err := s.repos.Briefs.FindByID(ctx, briefID)
	if err != nil {
		return nil, missing(err, "Invalid brief id '%d'", briefID)
	}
	b.UserIDs = nil
	rs, err := s.repos.Responses.ListForSupplierAndBrief(ctx, briefID, supplierCode(user))
	if err != nil {
		return nil, err
	}
	return &BriefResponses{Brief: b, BriefResponses: rs}, nil
}

func (s *briefResponseService) ListForSupplier(ctx context.Context, user *model.User) ([]model.SupplierResponse, error) {
	if !isSupplier(user) {
		return nil, forbidden("Only supplier role users can view responses")
	}
	return s.repos.Responses.ListForSupplier(ctx, *user.SupplierCode)
}

func (s *briefResponseService) UploadDocument(ctx context.Context, briefID, code int64, slug string, user *model.User, r io.Reader, size int64) (string, error) {
	if !slugPattern.MatchString(slug) {
		return "", invalid("Invalid document name '%s'", slug)
	}
	supplier, b, err := s.CanRespond(ctx, briefID, user)
	if err != nil {
		return "", err
	}
	if supplier.Code != code {
		return "", forbidden("Supplier code does not match")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	contentType := fallbackContentType
	if mt := mimetype.Detect(head); !mt.Is("application/octet-stream") {
		contentType = mt.String()
	}

	key := storage.DocumentKey(b.FrameworkSlug, b.ID, supplier.Code, slug)
	if _, err := s.store.Put(ctx, key, io.MultiReader(bytes.NewReader(head), r), storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"brief-id":      strconv.FormatInt(b.ID, 10),
			"supplier-code": strconv.FormatInt(supplier.Code, 10),
		},
	}); err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}
	s.rec.record(ctx, model.AuditUploadBriefResponseDocument, user.EmailAddress, briefObject, b.ID, map[string]any{
		"key":         key,
		"contentType": contentType,
	})
	return slug, nil
}

func (s *briefResponseService) DownloadDocument(ctx context.Context, briefID, code int64, slug string, user *model.User) (*Document, error) {
	if !slugPattern.MatchString(slug) {
		return nil, invalid("Invalid document name '%s'", slug)
	}
	b, err := s.repos.Briefs.FindByID(ctx, briefID)
	if err != nil {
		return nil, missing(err, "Invalid brief id '%d'", briefID)
	}
	buyer := user != nil && user.Role == model.RoleBuyer && b.HasUser(user.ID)
	seller := isSupplier(user) && *user.SupplierCode == code
	if !buyer && !seller {
		return nil, forbidden(msgBriefUnauthorised)
	}

	body, info, err := s.store.Get(ctx, storage.DocumentKey(b.FrameworkSlug, b.ID, code, slug))
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, notFound("Document '%s' not found", slug)
		}
		return nil, err
	}
	ct := info.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = fallbackContentType
	}
	return &Document{Body: body, ContentType: ct, Size: info.Size}, nil
}

func (s *briefResponseService) contact(ctx context.Context, briefID int64, user *model.User) (*model.BriefResponseContact, error) {
	code := supplierCode(user)
	c, err := s.repos.Responses.FindContact(ctx, briefID, code)
	if err != nil {
		return nil, missing(err, "Cannot find brief response contact with brief_id :%d and supplier_code: %d", briefID, code)
	}
	return c, nil
}

func (s *briefResponseService) GetContact(ctx context.Context, briefID int64, user *model.User) (*model.BriefResponseContact, error) {
	return s.contact(ctx, briefID, user)
}

func (s *briefResponseService) UpdateContact(ctx context.Context, briefID int64, user *model.User, email string) (*model.BriefResponseContact, error) {
	c, err := s.contact(ctx, briefID, user)
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if !isEmail(email) {
		return nil, invalid("%q must be a valid email address", "emailAddress")
	}
	c.EmailAddress = email
	saved, err := s.repos.Responses.SaveContact(ctx, c)
	if err != nil {
		return nil, err
	}
	s.rec.record(ctx, model.AuditUpdateBriefResponseContact, user.EmailAddress, "BriefResponseContact", saved.ID, map[string]any{
		"briefResponseContactId": saved.ID,
	})
	return saved, nil
}
