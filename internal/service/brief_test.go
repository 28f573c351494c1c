package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"marketapi/internal/config"
	"marketapi/internal/logger"
	"marketapi/internal/model"
	"marketapi/internal/notify"
	"marketapi/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testMarketplace = config.MarketplaceConfig{
	FrontendAddress:        "https://marketplace.example",
	GenericEmailDomains:    []string{"gmail.com"},
	SpecialistMaxResponses: 3,
	DefaultPageSize:        20,
	DefaultBriefOpenDays:   14,
}

func strp(s string) *string { return &s }

func timep(t time.Time) *time.Time { return &t }

func buyer(id int64) *model.User {
	return &model.User{ID: id, Role: model.RoleBuyer, EmailAddress: "buyer@agency.gov.au", Active: true}
}

func closedBrief() *model.Brief {
	return &model.Brief{
		ID:          1,
		LotSlug:     model.LotDigitalOutcome,
		Data:        map[string]any{"title": "Portal"},
		UserIDs:     []int64{10},
		PublishedAt: timep(testNow.Add(-20 * 24 * time.Hour)),
		ClosedAt:    timep(testNow.Add(-time.Hour)),
	}
}

func TestBriefService_Get(t *testing.T) {
	freezeNow(t, testNow)
	ctx := context.Background()

	t.Run("draft hidden from others", func(t *testing.T) {
		f := newFixture()
		f.briefs.On("FindByID", ctx, int64(1)).Return(&model.Brief{ID: 1, UserIDs: []int64{10}}, nil)

		_, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).Get(ctx, 1, buyer(11))
		require.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, msgBriefUnauthorised, Message(err))
		f.assertExpectations(t)
	})

	t.Run("owner sees response count", func(t *testing.T) {
		f := newFixture()
		f.briefs.On("FindByID", ctx, int64(1)).Return(closedBrief(), nil)
		f.responses.On("CountForBrief", ctx, int64(1)).Return(4, nil)

		d, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).Get(ctx, 1, buyer(10))
		require.NoError(t, err)
		assert.Equal(t, model.BriefStatusClosed, d.Status)
		require.NotNil(t, d.BriefResponseCount)
		assert.Equal(t, 4, *d.BriefResponseCount)
		assert.Equal(t, []int64{10}, d.UserIDs)
		f.assertExpectations(t)
	})

	t.Run("public view drops users", func(t *testing.T) {
		f := newFixture()
		f.briefs.On("FindByID", ctx, int64(1)).Return(closedBrief(), nil)

		d, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).Get(ctx, 1, nil)
		require.NoError(t, err)
		assert.Nil(t, d.BriefResponseCount)
		assert.Nil(t, d.UserIDs)
		f.assertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.briefs.On("FindByID", ctx, int64(9)).Return(nil, sql.ErrNoRows)

		_, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).Get(ctx, 9, nil)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "Invalid brief id '9'", Message(err))
	})
}

func TestBriefService_NotifySellers(t *testing.T) {
	freezeNow(t, testNow)
	ctx := context.Background()

	req := func(flow string, codes ...int64) NotifySellersRequest {
		sel := make([]SelectedSeller, 0)
		for _, c := range codes {
			sel = append(sel, SelectedSeller{SupplierCode: c})
		}
		return NotifySellersRequest{Subject: strp("Outcome"), Content: strp("Thanks"), Flow: strp(flow), SelectedSellers: sel}
	}

	tests := []struct {
		name    string
		brief   *model.Brief
		req     NotifySellersRequest
		setup   func(f *fixture)
		wantErr string
	}{
		{
			name:  "notifies response and account addresses",
			brief: closedBrief(),
			req:   req("unsuccessful", 100, 100, 300),
			setup: func(f *fixture) {
				f.responses.On("ListForBrief", ctx, int64(1)).Return([]model.BriefResponse{
					{SupplierCode: 100, SupplierName: "Acme", Data: map[string]any{"respondToEmailAddress": "Bids@acme.com"}},
					{SupplierCode: 200, SupplierName: "Other", Data: map[string]any{"respondToEmailAddress": "x@other.com"}},
				}, nil)
				f.users.On("EmailsForSupplier", ctx, int64(100)).Return([]string{"ops@acme.com", "bids@acme.com"}, nil)
				f.notifier.On("Enqueue", ctx, mock.MatchedBy(func(n *notify.Notification) bool {
					return n.Kind == notify.KindSellerUnsuccessful && n.Subject == "Outcome" &&
						(n.To[0] == "bids@acme.com" || n.To[0] == "ops@acme.com")
				})).Return(nil).Twice()
				f.audit.On("Create", ctx, mock.MatchedBy(func(e *model.AuditEvent) bool {
					codes, _ := e.Data["supplierCodesNotified"].([]int64)
					return e.Type == model.AuditNotifyBriefResponders && len(codes) == 1 && codes[0] == 100
				})).Return(nil)
			},
		},
		{
			name:    "brief still live",
			brief:   &model.Brief{ID: 1, UserIDs: []int64{10}, PublishedAt: timep(testNow.Add(-time.Hour))},
			req:     req("unsuccessful", 100),
			wantErr: "Brief is not closed",
		},
		{
			name:    "empty selection",
			brief:   closedBrief(),
			req:     req("unsuccessful"),
			wantErr: "You must supply at least one supplier to notify",
		},
		{
			name:    "unknown flow",
			brief:   closedBrief(),
			req:     req("successful", 100),
			wantErr: "This flow type is not valid",
		},
		{
			name:    "missing subject",
			brief:   closedBrief(),
			req:     NotifySellersRequest{Content: strp("x"), Flow: strp("unsuccessful"), SelectedSellers: []SelectedSeller{{100}}},
			wantErr: `The "subject" value was not found but is required`,
		},
		{
			name:  "no matching responders",
			brief: closedBrief(),
			req:   req("unsuccessful", 999),
			setup: func(f *fixture) {
				f.responses.On("ListForBrief", ctx, int64(1)).Return([]model.BriefResponse{}, nil)
			},
			wantErr: "You must supply at least one supplier to notify",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.briefs.On("FindByID", ctx, int64(1)).Return(tt.brief, nil)
			if tt.setup != nil {
				tt.setup(f)
			}

			err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).NotifySellers(ctx, 1, buyer(10), tt.req)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, Message(err))
			} else {
				assert.NoError(t, err)
			}
			f.assertExpectations(t)
		})
	}
}

func TestBriefService_Create(t *testing.T) {
	freezeNow(t, testNow)
	ctx := context.Background()

	t.Run("creates draft", func(t *testing.T) {
		f := newFixture()
		f.teams.On("MembershipForUser", ctx, int64(10)).Return(nil, sql.ErrNoRows)
		f.briefs.On("FrameworkStatus", ctx, "digital-marketplace", model.LotATM).Return("live", nil)
		f.briefs.On("Create", ctx, mock.MatchedBy(func(b *model.Brief) bool {
			return b.LotSlug == model.LotATM && len(b.UserIDs) == 1 && b.UserIDs[0] == 10 && b.CreatedAt.Equal(testNow)
		})).Return(&model.Brief{ID: 5, LotSlug: model.LotATM, UserIDs: []int64{10}}, nil)
		f.responses.On("CountForBrief", ctx, int64(5)).Return(0, nil)
		f.expectAudit(model.AuditCreateBrief)

		d, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).Create(ctx, buyer(10), CreateBriefRequest{
			Framework: "digital-marketplace",
			Lot:       model.LotATM,
			Data:      map[string]any{"title": "Portal"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), d.ID)
		assert.Equal(t, model.BriefStatusDraft, d.Status)
		f.assertExpectations(t)
	})

	t.Run("rejects unknown atm field", func(t *testing.T) {
		f := newFixture()
		f.teams.On("MembershipForUser", ctx, int64(10)).Return(nil, sql.ErrNoRows)
		f.briefs.On("FrameworkStatus", ctx, "digital-marketplace", model.LotATM).Return("live", nil)

		_, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).Create(ctx, buyer(10), CreateBriefRequest{
			Framework: "digital-marketplace",
			Lot:       model.LotATM,
			Data:      map[string]any{"colour": "blue"},
		})
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, `Unexpected field "colour"`, Message(err))
		f.assertExpectations(t)
	})

	t.Run("unknown lot", func(t *testing.T) {
		f := newFixture()
		f.teams.On("MembershipForUser", ctx, int64(10)).Return(nil, sql.ErrNoRows)
		f.briefs.On("FrameworkStatus", ctx, "digital-marketplace", "nope").Return("", sql.ErrNoRows)

		_, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).Create(ctx, buyer(10), CreateBriefRequest{
			Framework: "digital-marketplace",
			Lot:       "nope",
		})
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Invalid framework or lot 'digital-marketplace/nope'", Message(err))
	})

	t.Run("member without permission", func(t *testing.T) {
		f := newFixture()
		f.teams.On("MembershipForUser", ctx, int64(10)).Return(&model.TeamMember{UserID: 10}, nil)

		_, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).Create(ctx, buyer(10), CreateBriefRequest{
			Framework: "digital-marketplace",
			Lot:       model.LotATM,
		})
		require.ErrorIs(t, err, ErrForbidden)
		f.assertExpectations(t)
	})
}

func TestBriefService_Update(t *testing.T) {
	freezeNow(t, testNow)
	ctx := context.Background()

	t.Run("merges data of a draft", func(t *testing.T) {
		f := newFixture()
		draft := &model.Brief{ID: 2, LotSlug: model.LotATM, UserIDs: []int64{10}, Data: map[string]any{"title": "Old", "summary": "S"}}
		f.briefs.On("FindByID", ctx, int64(2)).Return(draft, nil)
		f.teams.On("MembershipForUser", ctx, int64(10)).Return(nil, sql.ErrNoRows)
		f.briefs.On("Update", ctx, mock.MatchedBy(func(b *model.Brief) bool {
			return b.Data["title"] == "New" && b.Data["summary"] == "S"
		})).Return(nil)
		f.responses.On("CountForBrief", ctx, int64(2)).Return(0, nil)
		f.expectAudit(model.AuditUpdateBrief)

		d, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).
			Update(ctx, 2, buyer(10), map[string]any{"title": "New"})
		require.NoError(t, err)
		assert.Equal(t, "New", d.Title())
		f.assertExpectations(t)
	})

	t.Run("published brief is read only", func(t *testing.T) {
		f := newFixture()
		f.briefs.On("FindByID", ctx, int64(1)).Return(closedBrief(), nil)

		_, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).
			Update(ctx, 1, buyer(10), map[string]any{"title": "New"})
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Only draft briefs can be edited", Message(err))
	})
}

func TestBriefService_Publish(t *testing.T) {
	freezeNow(t, testNow)
	ctx := context.Background()

	tests := []struct {
		name   string
		length any
		want   time.Time
	}{
		{"default length", nil, testNow.Add(14 * 24 * time.Hour)},
		{"weeks", "2 weeks", testNow.Add(14 * 24 * time.Hour)},
		{"days", "5 days", testNow.Add(5 * 24 * time.Hour)},
		{"zero days", "0 days", testNow.Add(14 * 24 * time.Hour)},
		{"a year", "52 weeks", testNow.Add(364 * 24 * time.Hour)},
		{"over a year", "365 days", testNow.Add(14 * 24 * time.Hour)},
		{"week overflow", "9999999999999 weeks", testNow.Add(14 * 24 * time.Hour)},
		{"day overflow", "99999999999999999999 days", testNow.Add(14 * 24 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			data := map[string]any{"title": "Portal"}
			if tt.length != nil {
				data["requirementsLength"] = tt.length
			}
			draft := &model.Brief{ID: 3, FrameworkStatus: "live", UserIDs: []int64{10}, Data: data}
			f.briefs.On("FindByID", ctx, int64(3)).Return(draft, nil)
			f.teams.On("MembershipForUser", ctx, int64(10)).Return(nil, sql.ErrNoRows)
			f.briefs.On("Update", ctx, mock.AnythingOfType("*model.Brief")).Return(nil)
			f.responses.On("CountForBrief", ctx, int64(3)).Return(0, nil)
			f.expectAudit(model.AuditPublishBrief)

			d, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).Publish(ctx, 3, buyer(10))
			require.NoError(t, err)
			assert.Equal(t, model.BriefStatusLive, d.Status)
			require.NotNil(t, d.ClosedAt)
			assert.True(t, tt.want.Equal(*d.ClosedAt))
			f.assertExpectations(t)
		})
	}

	t.Run("framework not live", func(t *testing.T) {
		f := newFixture()
		f.briefs.On("FindByID", ctx, int64(3)).Return(&model.Brief{ID: 3, FrameworkStatus: "expired", UserIDs: []int64{10}}, nil)
		f.teams.On("MembershipForUser", ctx, int64(10)).Return(nil, sql.ErrNoRows)

		_, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).Publish(ctx, 3, buyer(10))
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Brief framework must be live", Message(err))
	})
}

func TestBriefService_ListAndDashboard(t *testing.T) {
	freezeNow(t, testNow)
	ctx := context.Background()
	f := newFixture()
	svc := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop())

	f.briefs.On("List", ctx, repository.PageQuery{Limit: 20, Offset: 20}).
		Return(&repository.PageResult[model.Brief]{Items: []model.Brief{*closedBrief()}, Total: 21}, nil)
	page, err := svc.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 21, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, model.BriefStatusClosed, page.Items[0].Status)

	_, err = svc.List(ctx, math.MaxInt64/10, 100)
	require.ErrorIs(t, err, ErrValidation)
	f.briefs.AssertNumberOfCalls(t, "List", 1)

	draft := model.Brief{ID: 2, Data: map[string]any{"title": "Draft"}}
	f.briefs.On("ListForUser", ctx, int64(10)).Return([]model.Brief{*closedBrief(), draft}, nil)
	f.responses.On("CountForBrief", ctx, int64(1)).Return(3, nil)

	dash, err := svc.Dashboard(ctx, buyer(10), "closed")
	require.NoError(t, err)
	assert.Equal(t, model.BriefCounts{Draft: 1, Closed: 1}, dash.Counts)
	require.Len(t, dash.Briefs, 1)
	assert.Equal(t, "Portal", dash.Briefs[0].Title)
	assert.Equal(t, 3, dash.Briefs[0].ResponseCount)
	f.assertExpectations(t)
}

func TestBriefService_NotifyClosed(t *testing.T) {
	freezeNow(t, testNow)
	ctx := context.Background()

	first, second, third := closedBrief(), closedBrief(), closedBrief()
	second.ID, third.ID = 2, 3
	second.UserIDs, third.UserIDs = []int64{20, 21}, []int64{30}

	f := newFixture()
	f.briefs.On("ListClosedPendingNotice", ctx, testNow).Return([]model.Brief{*first, *second, *third}, nil)
	f.audit.On("Exists", ctx, model.AuditSentClosedBriefEmail, briefObject, int64(1)).Return(true, nil)
	f.audit.On("Exists", ctx, model.AuditSentClosedBriefEmail, briefObject, int64(2)).Return(false, nil)
	f.audit.On("Exists", ctx, model.AuditSentClosedBriefEmail, briefObject, int64(3)).Return(false, nil)
	f.users.On("FindByIDs", ctx, []int64{20, 21}).Return([]model.User{
		{ID: 20, EmailAddress: "a@agency.gov.au", Active: true},
		{ID: 21, EmailAddress: "b@agency.gov.au"},
	}, nil)
	f.users.On("FindByIDs", ctx, []int64{30}).Return([]model.User{
		{ID: 30, EmailAddress: "c@agency.gov.au", Active: true},
	}, nil)
	f.notifier.On("Enqueue", ctx, mock.MatchedBy(func(n *notify.Notification) bool {
		return n.To[0] == "a@agency.gov.au" && len(n.To) == 1 && n.Subject == closedSubject
	})).Return(nil)
	f.notifier.On("Enqueue", ctx, mock.MatchedBy(func(n *notify.Notification) bool {
		return n.To[0] == "c@agency.gov.au"
	})).Return(errors.New("redis down"))
	f.audit.On("Create", ctx, mock.MatchedBy(func(e *model.AuditEvent) bool {
		return e.Type == model.AuditSentClosedBriefEmail && e.ObjectID == 2
	})).Return(nil).Once()

	n, err := NewBriefService(f.repos(), f.notifier, testMarketplace, logger.Nop()).NotifyClosed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.assertExpectations(t)
}
