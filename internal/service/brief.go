package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"marketapi/internal/config"
	"marketapi/internal/logger"
	"marketapi/internal/model"
	"marketapi/internal/notify"
)

const (
	msgBriefUnauthorised = "Unauthorised to view brief or brief does not exist"
	briefObject          = "Brief"
	flowUnsuccessful     = "unsuccessful"
)

// BriefDetail is a brief as shown to a user.
type BriefDetail struct {
	*model.Brief
	Status             string `json:"status"`
	BriefResponseCount *int   `json:"briefResponseCount,omitempty"`
}

// BriefSellers lists the suppliers who responded to a closed brief.
type BriefSellers struct {
	Brief   *model.Brief          `json:"brief"`
	Sellers []model.BriefResponse `json:"sellers"`
}

// SelectedSeller identifies a supplier picked in a seller notification.
type SelectedSeller struct {
	SupplierCode int64 `json:"supplier_code"`
}

// NotifySellersRequest is the body of a seller notification.
type NotifySellersRequest struct {
	Subject         *string          `json:"subject" validate:"required"`
	Content         *string          `json:"content" validate:"required"`
	Flow            *string          `json:"flow" validate:"required"`
	SelectedSellers []SelectedSeller `json:"selectedSellers" validate:"required"`
}

// CreateBriefRequest starts a draft brief.
type CreateBriefRequest struct {
	Framework string         `json:"framework" validate:"required"`
	Lot       string         `json:"lot" validate:"required"`
	Data      map[string]any `json:"data"`
}

// BriefPage is a page of briefs.
type BriefPage struct {
	Items   []BriefDetail `json:"briefs"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// Dashboard is the buyer's view of their briefs.
type Dashboard struct {
	Briefs []model.BriefSummary `json:"briefs"`
	Counts model.BriefCounts    `json:"brief_counts"`
}

// BriefService covers the buyer side of briefs.
type BriefService interface {
	Get(ctx context.Context, id int64, user *model.User) (*BriefDetail, error)
	UserStatus(ctx context.Context, id int64, user *model.User) (*BriefUserStatusView, error)
	Sellers(ctx context.Context, id int64, user *model.User) (*BriefSellers, error)
	NotifySellers(ctx context.Context, id int64, user *model.User, req NotifySellersRequest) error

	Create(ctx context.Context, user *model.User, req CreateBriefRequest) (*BriefDetail, error)
	Update(ctx context.Context, id int64, user *model.User, data map[string]any) (*BriefDetail, error)
	Publish(ctx context.Context, id int64, user *model.User) (*BriefDetail, error)
	List(ctx context.Context, page, perPage int) (*BriefPage, error)
	Dashboard(ctx context.Context, user *model.User, status string) (*Dashboard, error)

	// NotifyClosed sends the closing notice for every brief that closed since the last run.
	NotifyClosed(ctx context.Context) (int, error)
}

type briefService struct {
	repos  Repositories
	rec    recorder
	perms  permissions
	status statusLoader
	cfg    config.MarketplaceConfig
	log    *logger.Logger
}

// NewBriefService constructs a BriefService.
func NewBriefService(repos Repositories, n notify.Notifier, cfg config.MarketplaceConfig, log *logger.Logger) BriefService {
	log = log.Component("brief_service")
	return &briefService{
		repos:  repos,
		rec:    recorder{audit: repos.Audit, notifier: n, log: log},
		perms:  permissions{teams: repos.Teams},
		status: statusLoader{repos: repos},
		cfg:    cfg,
		log:    log,
	}
}

func (s *briefService) find(ctx context.Context, id int64) (*model.Brief, error) {
	b, err := s.repos.Briefs.FindByID(ctx, id)
	if err != nil {
		return nil, missing(err, "Invalid brief id '%d'", id)
	}
	return b, nil
}

// findOwned returns the brief when user is one of its buyers.
func (s *briefService) findOwned(ctx context.Context, id int64, user *model.User) (*model.Brief, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || !b.HasUser(user.ID) {
		return nil, forbidden(msgBriefUnauthorised)
	}
	return b, nil
}

func (s *briefService) detail(ctx context.Context, b *model.Brief, withCount bool) (*BriefDetail, error) {
	d := &BriefDetail{Brief: b, Status: b.StatusAt(now())}
	if withCount {
		n, err := s.repos.Responses.CountForBrief(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		d.BriefResponseCount = &n
	}
	if !withCount {
		d.UserIDs = nil
	}
	return d, nil
}

func (s *briefService) Get(ctx context.Context, id int64, user *model.User) (*BriefDetail, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	owner := user != nil && user.Role == model.RoleBuyer && b.HasUser(user.ID)
	if b.StatusAt(now()) == model.BriefStatusDraft && !owner {
		return nil, forbidden(msgBriefUnauthorised)
	}
	return s.detail(ctx, b, owner)
}

func (s *briefService) UserStatus(ctx context.Context, id int64, user *model.User) (*BriefUserStatusView, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	st, err := s.status.load(ctx, b, user)
	if err != nil {
		return nil, err
	}
	v := st.View()
	return &v, nil
}

func (s *briefService) closedOwned(ctx context.Context, id int64, user *model.User) (*model.Brief, error) {
	b, err := s.findOwned(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if b.StatusAt(now()) != model.BriefStatusClosed {
		return nil, forbidden("Brief is not closed")
	}
	return b, nil
}

func (s *briefService) Sellers(ctx context.Context, id int64, user *model.User) (*BriefSellers, error) {
	b, err := s.closedOwned(ctx, id, user)
	if err != nil {
		return nil, err
	}
	rs, err := s.repos.Responses.ListForBrief(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.UserIDs = nil
	return &BriefSellers{Brief: b, Sellers: rs}, nil
}

// responders groups the brief's responses by supplier, collecting contact addresses.
func (s *briefService) responders(ctx context.Context, briefID int64) (map[int64]*model.BriefResponder, error) {
	rs, err := s.repos.Responses.ListForBrief(ctx, briefID)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*model.BriefResponder)
	for _, r := range rs {
		resp, ok := out[r.SupplierCode]
		if !ok {
			resp = &model.BriefResponder{SupplierCode: r.SupplierCode, SupplierName: r.SupplierName}
			out[r.SupplierCode] = resp
		}
		if addr := strings.ToLower(r.RespondToEmailAddress()); addr != "" {
			resp.Emails = appendUnique(resp.Emails, addr)
		}
	}
	return out, nil
}

func (s *briefService) NotifySellers(ctx context.Context, id int64, user *model.User, req NotifySellersRequest) error {
	b, err := s.closedOwned(ctx, id, user)
	if err != nil {
		return err
	}
	if err := validateStruct(req); err != nil {
		return err
	}
	if len(req.SelectedSellers) == 0 {
		return invalid("You must supply at least one supplier to notify")
	}
	if *req.Flow != flowUnsuccessful {
		return invalid("This flow type is not valid")
	}

	responders, err := s.responders(ctx, b.ID)
	if err != nil {
		return err
	}
	selected := make([]*model.BriefResponder, 0)
	seen := make(map[int64]bool)
	for _, sel := range req.SelectedSellers {
		if r, ok := responders[sel.SupplierCode]; ok && !seen[sel.SupplierCode] {
			seen[sel.SupplierCode] = true
			selected = append(selected, r)
		}
	}
	if len(selected) == 0 {
		return invalid("You must supply at least one supplier to notify")
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].SupplierCode < selected[j].SupplierCode })

	notified := make([]int64, 0, len(selected))
	for _, r := range selected {
		emails, err := s.repos.Users.EmailsForSupplier(ctx, r.SupplierCode)
		if err != nil {
			return err
		}
		for _, e := range emails {
			r.Emails = appendUnique(r.Emails, strings.ToLower(e))
		}
		for _, to := range r.Emails {
			s.rec.send(ctx, &notify.Notification{
				Kind:    notify.KindSellerUnsuccessful,
				To:      []string{to},
				Subject: *req.Subject,
				Params: map[string]any{
					"content":       *req.Content,
					"supplier_name": r.SupplierName,
					"brief_id":      b.ID,
				},
			})
		}
		notified = append(notified, r.SupplierCode)
	}

	s.rec.record(ctx, model.AuditNotifyBriefResponders, user.EmailAddress, briefObject, b.ID, map[string]any{
		"briefId":               b.ID,
		"notificationType":      *req.Flow,
		"supplierCodesNotified": notified,
	})
	return nil
}

func (s *briefService) Create(ctx context.Context, user *model.User, req CreateBriefRequest) (*BriefDetail, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.perms.require(ctx, user, model.PermissionCreateDrafts); err != nil {
		return nil, err
	}
	status, err := s.repos.Briefs.FrameworkStatus(ctx, req.Framework, req.Lot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, invalid("Invalid framework or lot '%s/%s'", req.Framework, req.Lot)
	}
	if err != nil {
		return nil, err
	}
	if status != model.FrameworkStatusLive {
		return nil, invalid("Framework '%s' is not live", req.Framework)
	}
	data := req.Data
	if data == nil {
		data = map[string]any{}
	}
	if req.Lot == model.LotATM {
		if errs := ValidateATMData(data); len(errs) > 0 {
			return nil, invalid("%s", strings.Join(errs, ", "))
		}
	}

	ts := now()
	b, err := s.repos.Briefs.Create(ctx, &model.Brief{
		FrameworkSlug: req.Framework,
		LotSlug:       req.Lot,
		Data:          data,
		UserIDs:       []int64{user.ID},
		CreatedAt:     ts,
		UpdatedAt:     ts,
	})
	if err != nil {
		return nil, err
	}
	s.rec.record(ctx, model.AuditCreateBrief, user.EmailAddress, briefObject, b.ID, map[string]any{"briefId": b.ID})
	return s.detail(ctx, b, true)
}

func (s *briefService) Update(ctx context.Context, id int64, user *model.User, data map[string]any) (*BriefDetail, error) {
	b, err := s.findOwned(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if b.StatusAt(now()) != model.BriefStatusDraft {
		return nil, invalid("Only draft briefs can be edited")
	}
	if err := s.perms.require(ctx, user, model.PermissionCreateDrafts); err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(b.Data)+len(data))
	for k, v := range b.Data {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	if b.LotSlug == model.LotATM {
		if errs := ValidateATMData(merged); len(errs) > 0 {
			return nil, invalid("%s", strings.Join(errs, ", "))
		}
	}

	b.Data = merged
	b.UpdatedAt = now()
	if err := s.repos.Briefs.Update(ctx, b); err != nil {
		return nil, missing(err, "Invalid brief id '%d'", id)
	}
	s.rec.record(ctx, model.AuditUpdateBrief, user.EmailAddress, briefObject, b.ID, map[string]any{
		"briefId":     b.ID,
		"updatedKeys": sortedDataKeys(data),
	})
	return s.detail(ctx, b, true)
}

func (s *briefService) Publish(ctx context.Context, id int64, user *model.User) (*BriefDetail, error) {
	b, err := s.findOwned(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if b.StatusAt(now()) != model.BriefStatusDraft {
		return nil, invalid("Brief has already been published")
	}
	if err := s.perms.require(ctx, user, model.PermissionPublishOpportunities); err != nil {
		return nil, err
	}
	if b.FrameworkStatus != model.FrameworkStatusLive {
		return nil, invalid("Brief framework must be live")
	}

	ts := now()
	closes := ts.Add(b.RequirementsLength(time.Duration(s.cfg.DefaultBriefOpenDays) * 24 * time.Hour))
	b.PublishedAt = &ts
	b.ClosedAt = &closes
	b.UpdatedAt = ts
	if err := s.repos.Briefs.Update(ctx, b); err != nil {
		return nil, missing(err, "Invalid brief id '%d'", id)
	}
	s.rec.record(ctx, model.AuditPublishBrief, user.EmailAddress, briefObject, b.ID, map[string]any{
		"briefId":  b.ID,
		"closedAt": closes,
	})
	return s.detail(ctx, b, true)
}

func (s *briefService) List(ctx context.Context, page, perPage int) (*BriefPage, error) {
	page, perPage, q, err := pageQuery(page, perPage, s.cfg.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	res, err := s.repos.Briefs.List(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]BriefDetail, 0, len(res.Items))
	for i := range res.Items {
		b := res.Items[i]
		items = append(items, BriefDetail{Brief: &b, Status: b.StatusAt(now())})
	}
	return &BriefPage{Items: items, Total: res.Total, Page: page, PerPage: perPage}, nil
}

func (s *briefService) Dashboard(ctx context.Context, user *model.User, status string) (*Dashboard, error) {
	briefs, err := s.repos.Briefs.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	ts := now()
	out := &Dashboard{Briefs: make([]model.BriefSummary, 0)}
	for i := range briefs {
		b := &briefs[i]
		st := b.StatusAt(ts)
		switch st {
		case model.BriefStatusDraft:
			out.Counts.Draft++
		case model.BriefStatusLive:
			out.Counts.Live++
		case model.BriefStatusClosed:
			out.Counts.Closed++
		case model.BriefStatusWithdrawn:
			out.Counts.Withdrawn++
		}
		if status != "" && st != status {
			continue
		}
		sum := model.BriefSummary{ID: b.ID, Title: b.Title(), LotSlug: b.LotSlug, Status: st, ClosedAt: b.ClosedAt}
		if st != model.BriefStatusDraft {
			n, err := s.repos.Responses.CountForBrief(ctx, b.ID)
			if err != nil {
				return nil, err
			}
			sum.ResponseCount = n
		}
		out.Briefs = append(out.Briefs, sum)
	}
	return out, nil
}

const closedSubject = "Your brief has closed - please review all responses."

func (s *briefService) NotifyClosed(ctx context.Context) (int, error) {
	briefs, err := s.repos.Briefs.ListClosedPendingNotice(ctx, now())
	if err != nil {
		return 0, fmt.Errorf("list closed briefs: %w", err)
	}

	sent := 0
	for i := range briefs {
		b := &briefs[i]
		done, err := s.repos.Audit.Exists(ctx, model.AuditSentClosedBriefEmail, briefObject, b.ID)
		if err != nil {
			return sent, err
		}
		if done {
			continue
		}
		users, err := s.repos.Users.FindByIDs(ctx, b.UserIDs)
		if err != nil {
			return sent, err
		}
		to := make([]string, 0, len(users))
		for _, u := range users {
			if u.Active {
				to = append(to, u.EmailAddress)
			}
		}
		if len(to) > 0 {
			ok := s.rec.send(ctx, &notify.Notification{
				Kind:    notify.KindBriefClosed,
				To:      to,
				Subject: closedSubject,
				Params: map[string]any{
					"frontend_url": s.cfg.FrontendAddress,
					"brief_name":   b.Title(),
					"brief_id":     b.ID,
				},
			})
			if !ok {
				continue
			}
		}
		s.rec.record(ctx, model.AuditSentClosedBriefEmail, "", briefObject, b.ID, map[string]any{
			"to_addresses": strings.Join(to, ", "),
			"subject":      closedSubject,
		})
		sent++
	}
	return sent, nil
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func sortedDataKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
