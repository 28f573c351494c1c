package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"

	"marketapi/internal/abr"
	abrMocks "marketapi/internal/abr/mocks"
	"marketapi/internal/model"
	"marketapi/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSupplierService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.suppliers.On("List", ctx, "acme", repository.PageQuery{Limit: 20, Offset: 0}).
		Return(&repository.PageResult[model.Supplier]{Items: []model.Supplier{{Code: 100}}, Total: 1}, nil)
	f.suppliers.On("List", ctx, "", repository.PageQuery{Limit: 5, Offset: 10}).
		Return(&repository.PageResult[model.Supplier]{Items: []model.Supplier{}, Total: 11}, nil)
	svc := NewSupplierService(f.repos(), new(abrMocks.MockLooker), testMarketplace)

	page, err := svc.List(ctx, "  acme ", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PerPage)
	assert.Len(t, page.Items, 1)

	page, err = svc.List(ctx, "", 3, 5)
	require.NoError(t, err)
	assert.Equal(t, 11, page.Total)

	f.suppliers.On("List", ctx, "", repository.PageQuery{Limit: 100, Offset: 100}).
		Return(&repository.PageResult[model.Supplier]{Items: []model.Supplier{}, Total: 11}, nil)
	page, err = svc.List(ctx, "", 2, 1<<40)
	require.NoError(t, err)
	assert.Equal(t, 100, page.PerPage)

	_, err = svc.List(ctx, "", math.MaxInt64/10, 100)
	require.ErrorIs(t, err, ErrValidation)
	f.assertExpectations(t)
}

func TestSupplierService_ABNUsed(t *testing.T) {
	ctx := context.Background()

	t.Run("supplier holds abn", func(t *testing.T) {
		f := newFixture()
		f.suppliers.On("FindByABN", ctx, "51824753556").Return(&model.Supplier{Code: 100}, nil)
		used, err := NewSupplierService(f.repos(), nil, testMarketplace).ABNUsed(ctx, "51 824 753 556")
		require.NoError(t, err)
		assert.True(t, used)
	})

	t.Run("falls back to applications", func(t *testing.T) {
		f := newFixture()
		f.suppliers.On("FindByABN", ctx, "51824753556").Return(nil, sql.ErrNoRows)
		f.suppliers.On("ApplicationExistsForABN", ctx, "51824753556").Return(false, nil)
		used, err := NewSupplierService(f.repos(), nil, testMarketplace).ABNUsed(ctx, "51824753556")
		require.NoError(t, err)
		assert.False(t, used)
		f.assertExpectations(t)
	})

	t.Run("blank", func(t *testing.T) {
		f := newFixture()
		_, err := NewSupplierService(f.repos(), nil, testMarketplace).ABNUsed(ctx, " \t")
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "ABN is required", Message(err))
	})
}

func TestSupplierService_ABNLookup(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("timeout")

	tests := []struct {
		name     string
		result   string
		err      error
		want     string
		wantKind error
		wantErr  error
	}{
		{name: "found", result: "ACME PTY LTD", want: "ACME PTY LTD"},
		{name: "not registered", err: abr.ErrNotFound, wantKind: ErrNotFound},
		{name: "upstream failure", err: boom, wantErr: boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := new(abrMocks.MockLooker)
			lookup.On("OrganisationName", ctx, "51824753556").Return(tt.result, tt.err)

			name, err := NewSupplierService(newFixture().repos(), lookup, testMarketplace).ABNLookup(ctx, "51 824 753 556")
			switch {
			case tt.wantKind != nil:
				assert.ErrorIs(t, err, tt.wantKind)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, name)
			}
			lookup.AssertExpectations(t)
		})
	}
}

func TestSupplierService_Messages(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		apps         []model.Application
		skip         bool
		wantWarnings int
	}{
		{name: "no edits"},
		{name: "saved edit", apps: []model.Application{{Status: model.ApplicationSaved}}, wantWarnings: 1},
		{
			name:         "saved and submitted",
			apps:         []model.Application{{Status: model.ApplicationSaved}, {Status: model.ApplicationSubmitted}},
			wantWarnings: 0,
		},
		{
			name:         "submitted check skipped",
			apps:         []model.Application{{Status: model.ApplicationSaved}, {Status: model.ApplicationSubmitted}},
			skip:         true,
			wantWarnings: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.suppliers.On("FindByCode", ctx, int64(100)).Return(&model.Supplier{Code: 100}, nil)
			f.suppliers.On("ApplicationsForSupplier", ctx, int64(100), model.ApplicationTypeEdit).Return(tt.apps, nil)

			msgs, err := NewSupplierService(f.repos(), nil, testMarketplace).Messages(ctx, 100, supplierUser(100), tt.skip)
			require.NoError(t, err)
			assert.Empty(t, msgs.Errors)
			require.Len(t, msgs.Warnings, tt.wantWarnings)
			if tt.wantWarnings > 0 {
				assert.Equal(t, "SB001", msgs.Warnings[0].ID)
			}
		})
	}
}

func TestSupplierService_Messages_Access(t *testing.T) {
	ctx := context.Background()

	t.Run("admin", func(t *testing.T) {
		f := newFixture()
		f.suppliers.On("FindByCode", ctx, int64(100)).Return(&model.Supplier{Code: 100}, nil)
		f.suppliers.On("ApplicationsForSupplier", ctx, int64(100), model.ApplicationTypeEdit).Return([]model.Application{}, nil)

		_, err := NewSupplierService(f.repos(), nil, testMarketplace).Messages(ctx, 100, admin(), false)
		require.NoError(t, err)
		f.assertExpectations(t)
	})

	denied := []struct {
		name string
		user *model.User
	}{
		{"other supplier", supplierUser(200)},
		{"buyer", buyer(10)},
		{"anonymous", nil},
	}
	for _, tt := range denied {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := NewSupplierService(f.repos(), nil, testMarketplace).Messages(ctx, 100, tt.user, false)
			require.ErrorIs(t, err, ErrForbidden)
			assert.Equal(t, "Unauthorised to view supplier messages", Message(err))
			f.suppliers.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
		})
	}
}

func TestDomainService_Get(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.domains.On("FindByID", ctx, int64(3)).Return(&model.Domain{ID: 3}, nil)
	f.domains.On("FindByName", ctx, "Strategy and Policy").Return(&model.Domain{ID: 3}, nil)
	f.domains.On("FindByName", ctx, "Juggling").Return(nil, sql.ErrNoRows)
	svc := NewDomainService(f.repos())

	d, err := svc.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.ID)

	d, err = svc.Get(ctx, " Strategy and Policy ")
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.ID)

	_, err = svc.Get(ctx, "Juggling")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Domain 'Juggling' not found", Message(err))

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDomainService_Framework(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.briefs.On("FindFramework", ctx, "digital-marketplace").
		Return(&model.Framework{ID: 7, Slug: "digital-marketplace", Status: "live", Lots: []string{"atm"}}, nil)
	f.briefs.On("FindFramework", ctx, "g-cloud").Return(nil, sql.ErrNoRows)
	svc := NewDomainService(f.repos())

	fw, err := svc.Framework(ctx, " digital-marketplace ")
	require.NoError(t, err)
	assert.Equal(t, []string{"atm"}, fw.Lots)

	_, err = svc.Framework(ctx, "g-cloud")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Framework 'g-cloud' not found", Message(err))

	_, err = svc.Framework(ctx, " ")
	require.ErrorIs(t, err, ErrValidation)
	f.assertExpectations(t)
}
