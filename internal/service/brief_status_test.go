package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"marketapi/internal/model"
	repoMocks "marketapi/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func supplierUser(code int64) *model.User {
	return &model.User{ID: 7, Role: model.RoleSupplier, EmailAddress: "seller@acme.com.au", SupplierCode: int64p(code)}
}

func testSupplier(code int64, domains ...model.SupplierDomain) *model.Supplier {
	return &model.Supplier{
		ID:         code * 10,
		Code:       code,
		Name:       "Acme",
		Status:     "complete",
		Data:       map[string]any{"recruiter": "no"},
		Frameworks: []string{model.FrameworkDigitalMarketplace},
		Domains:    domains,
	}
}

func assessed(domainID int64) model.SupplierDomain {
	return model.SupplierDomain{DomainID: domainID, Status: model.SupplierDomainAssessed}
}

func testBrief(lot string, data map[string]any) *model.Brief {
	return &model.Brief{ID: 1, FrameworkSlug: "digital-marketplace", LotSlug: lot, Data: data}
}

func TestBriefUserStatus_CanRespond(t *testing.T) {
	recruiter := testSupplier(100)
	recruiter.Data["recruiter"] = "yes"

	tests := []struct {
		name     string
		brief    *model.Brief
		user     *model.User
		supplier *model.Supplier
		want     bool
	}{
		{
			name:     "atm open to all, assessed anywhere",
			brief:    testBrief(model.LotATM, map[string]any{"openTo": "all"}),
			user:     supplierUser(100),
			supplier: testSupplier(100, assessed(3)),
			want:     true,
		},
		{
			name:     "atm open to all, not assessed",
			brief:    testBrief(model.LotATM, map[string]any{"openTo": "all"}),
			user:     supplierUser(100),
			supplier: testSupplier(100),
			want:     false,
		},
		{
			name:     "atm category needs that category",
			brief:    testBrief(model.LotATM, map[string]any{"openTo": "category", "sellerCategory": "5"}),
			user:     supplierUser(100),
			supplier: testSupplier(100, assessed(3)),
			want:     false,
		},
		{
			name:     "atm category assessed",
			brief:    testBrief(model.LotATM, map[string]any{"openTo": "category", "sellerCategory": "5"}),
			user:     supplierUser(100),
			supplier: testSupplier(100, assessed(5)),
			want:     true,
		},
		{
			name:     "atm excludes recruiters",
			brief:    testBrief(model.LotATM, map[string]any{"openTo": "all"}),
			user:     supplierUser(100),
			supplier: recruiter,
			want:     false,
		},
		{
			name:     "rfx requires invitation",
			brief:    testBrief(model.LotRFX, map[string]any{"sellers": map[string]any{"200": map[string]any{}}}),
			user:     supplierUser(100),
			supplier: testSupplier(100, assessed(3)),
			want:     false,
		},
		{
			name:     "training invited and assessed",
			brief:    testBrief(model.LotTraining, map[string]any{"sellers": map[string]any{"100": map[string]any{}}}),
			user:     supplierUser(100),
			supplier: testSupplier(100, assessed(3)),
			want:     true,
		},
		{
			name:     "specialist open to all lets recruiters in",
			brief:    testBrief(model.LotSpecialist, map[string]any{"openTo": "all", "sellerCategory": "5"}),
			user:     supplierUser(100),
			supplier: recruiter,
			want:     true,
		},
		{
			name:     "specialist selected but not invited",
			brief:    testBrief(model.LotSpecialist, map[string]any{"openTo": "selected", "sellerCategory": "5"}),
			user:     supplierUser(100),
			supplier: testSupplier(100, assessed(5)),
			want:     false,
		},
		{
			name: "specialist selected, invited and assessed",
			brief: testBrief(model.LotSpecialist, map[string]any{
				"openTo": "selected", "sellerCategory": "5", "sellers": map[string]any{"100": map[string]any{}},
			}),
			user:     supplierUser(100),
			supplier: testSupplier(100, assessed(5)),
			want:     true,
		},
		{
			name:     "outcome lot needs any assessment",
			brief:    testBrief(model.LotDigitalOutcome, nil),
			user:     supplierUser(100),
			supplier: testSupplier(100, assessed(1)),
			want:     true,
		},
		{
			name:     "buyer is never eligible",
			brief:    testBrief(model.LotDigitalOutcome, nil),
			user:     &model.User{ID: 1, Role: model.RoleBuyer},
			supplier: testSupplier(100, assessed(1)),
			want:     false,
		},
		{
			name:     "deleted supplier",
			brief:    testBrief(model.LotDigitalOutcome, nil),
			user:     supplierUser(100),
			supplier: &model.Supplier{Code: 100, Status: "deleted", Domains: []model.SupplierDomain{assessed(1)}},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewBriefUserStatus(tt.brief, tt.user, BriefUserSnapshot{Supplier: tt.supplier})
			assert.Equal(t, tt.want, st.CanRespond())
			assert.Equal(t, tt.want, st.View().CanRespond)
		})
	}
}

func TestBriefUserStatus_Flags(t *testing.T) {
	submitted := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	brief := testBrief(model.LotATM, map[string]any{"sellerCategory": "5"})
	rejected := testSupplier(100, model.SupplierDomain{DomainID: 5, Status: model.SupplierDomainRejected})

	t.Run("awaiting assessments", func(t *testing.T) {
		st := NewBriefUserStatus(brief, supplierUser(100), BriefUserSnapshot{
			Supplier:         rejected,
			CategoryEvidence: &model.Evidence{SubmittedAt: &submitted},
			Application:      &model.Application{Status: model.ApplicationSubmitted},
		})
		assert.True(t, st.IsAwaitingDomainAssessment())
		assert.False(t, st.HasEvidenceInDraftForCategory())
		assert.True(t, st.IsAwaitingApplicationAssessment())
		assert.False(t, st.HasResponded())
	})

	t.Run("draft evidence", func(t *testing.T) {
		st := NewBriefUserStatus(brief, supplierUser(100), BriefUserSnapshot{
			Supplier:         rejected,
			CategoryEvidence: &model.Evidence{},
		})
		assert.True(t, st.HasEvidenceInDraftForCategory())
	})

	tests := []struct {
		name string
		snap BriefUserSnapshot
		want bool
	}{
		{"evidence lodged for brief", BriefUserSnapshot{Supplier: testSupplier(100), EvidenceForBrief: true}, true},
		{"rejected after assessment for brief", BriefUserSnapshot{Supplier: rejected, DomainAssessmentForBrief: true}, true},
		{"rejected elsewhere", BriefUserSnapshot{Supplier: rejected}, false},
		{"assessment for brief but not rejected", BriefUserSnapshot{Supplier: testSupplier(100, assessed(5)), DomainAssessmentForBrief: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewBriefUserStatus(brief, supplierUser(100), tt.snap)
			assert.Equal(t, tt.want, st.HasBeenAssessedForBrief())
		})
	}
}

func TestStatusLoader_Load(t *testing.T) {
	ctx := context.Background()
	brief := testBrief(model.LotATM, map[string]any{"openTo": "category", "sellerCategory": "5"})
	supplier := testSupplier(100, assessed(5))

	mSup := new(repoMocks.MockSupplierRepository)
	mEv := new(repoMocks.MockEvidenceRepository)
	mBrief := new(repoMocks.MockBriefRepository)
	mResp := new(repoMocks.MockBriefResponseRepository)

	mSup.On("FindByCode", ctx, int64(100)).Return(supplier, nil)
	mEv.On("FindLatest", mock.Anything, int64(100), int64(5)).Return(nil, sql.ErrNoRows)
	mEv.On("ExistsForBrief", mock.Anything, int64(100), int64(1)).Return(true, nil)
	mBrief.On("HasDomainAssessmentForBrief", mock.Anything, int64(1), int64(1000)).Return(false, nil)
	mResp.On("ListForSupplierAndBrief", mock.Anything, int64(1), int64(100)).
		Return([]model.BriefResponse{{ID: 9}}, nil)

	l := statusLoader{repos: Repositories{Suppliers: mSup, Evidence: mEv, Briefs: mBrief, Responses: mResp}}
	st, err := l.load(ctx, brief, supplierUser(100))
	require.NoError(t, err)

	view := st.View()
	assert.True(t, view.CanRespond)
	assert.True(t, view.HasResponded)
	assert.True(t, view.HasBeenAssessedForBrief)
	assert.False(t, view.HasEvidenceInDraftForCategory)

	mSup.AssertExpectations(t)
	mEv.AssertExpectations(t)
	mBrief.AssertExpectations(t)
	mResp.AssertExpectations(t)
}

func TestStatusLoader_Load_NonSupplier(t *testing.T) {
	ctx := context.Background()
	mSup := new(repoMocks.MockSupplierRepository)
	mSup.On("FindApplication", ctx, int64(4)).Return(&model.Application{ID: 4, Status: model.ApplicationSubmitted}, nil)

	user := &model.User{ID: 3, Role: model.RoleApplicant, ApplicationID: int64p(4)}
	st, err := statusLoader{repos: Repositories{Suppliers: mSup}}.load(ctx, testBrief(model.LotATM, nil), user)
	require.NoError(t, err)

	assert.True(t, st.IsAwaitingApplicationAssessment())
	assert.False(t, st.CanRespond())
	mSup.AssertExpectations(t)
}
