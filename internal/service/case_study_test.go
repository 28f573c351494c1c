package service

import (
	"context"
	"database/sql"
	"testing"

	"marketapi/internal/logger"
	"marketapi/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func admin() *model.User {
	return &model.User{ID: 1, Role: model.RoleAdmin, EmailAddress: "admin@marketplace.gov.au"}
}

func TestDiffIDs(t *testing.T) {
	add, remove := diffIDs([]int64{1, 2, 3}, []int64{3, 5, 4})
	assert.Equal(t, []int64{4, 5}, add)
	assert.Equal(t, []int64{1, 2}, remove)

	add, remove = diffIDs(nil, nil)
	assert.Empty(t, add)
	assert.Empty(t, remove)
}

func TestCaseStudyService_CreateAssessment(t *testing.T) {
	freezeNow(t, testNow)
	ctx := context.Background()

	t.Run("stores assessment", func(t *testing.T) {
		f := newFixture()
		f.caseStudies.On("FindByID", ctx, int64(3)).Return(&model.CaseStudy{ID: 3}, nil)
		f.caseStudies.On("CreateAssessment", ctx, &model.CaseStudyAssessment{
			CaseStudyID:      3,
			UserID:           1,
			Status:           "approved",
			Comment:          "Solid",
			ApprovedCriteria: []int64{2, 4},
			CreatedAt:        testNow,
		}).Return(&model.CaseStudyAssessment{ID: 11, Status: "approved", ApprovedCriteria: []int64{2, 4}}, nil)
		f.expectAudit(model.AuditCreateCaseStudyAssessment)

		a, err := NewCaseStudyService(f.repos(), f.notifier, logger.Nop()).CreateAssessment(ctx, 3, admin(),
			CaseStudyAssessmentRequest{Status: "approved", Comment: "Solid", ApprovedCriteria: []int64{4, 2, 4}})
		require.NoError(t, err)
		assert.Equal(t, int64(11), a.ID)
		f.assertExpectations(t)
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture()
		_, err := NewCaseStudyService(f.repos(), f.notifier, logger.Nop()).CreateAssessment(ctx, 3, admin(),
			CaseStudyAssessmentRequest{Status: "maybe"})
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, `"status" must be one of: approved rejected`, Message(err))
	})

	t.Run("unknown case study", func(t *testing.T) {
		f := newFixture()
		f.caseStudies.On("FindByID", ctx, int64(3)).Return(nil, sql.ErrNoRows)
		_, err := NewCaseStudyService(f.repos(), f.notifier, logger.Nop()).CreateAssessment(ctx, 3, admin(),
			CaseStudyAssessmentRequest{Status: "rejected"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCaseStudyService_UpdateAssessment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.caseStudies.On("FindAssessment", ctx, int64(11)).
		Return(&model.CaseStudyAssessment{ID: 11, Status: "approved", ApprovedCriteria: []int64{1, 2}}, nil)
	f.caseStudies.On("UpdateAssessment", ctx, mock.MatchedBy(func(a *model.CaseStudyAssessment) bool {
		return a.Status == "rejected" && a.Comment == "Gaps"
	}), []int64{3}, []int64{1}).Return(nil)
	f.expectAudit(model.AuditUpdateCaseStudyAssessment)

	a, err := NewCaseStudyService(f.repos(), f.notifier, logger.Nop()).UpdateAssessment(ctx, 11, admin(),
		CaseStudyAssessmentRequest{Status: "rejected", Comment: "Gaps", ApprovedCriteria: []int64{2, 3}})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, a.ApprovedCriteria)
	f.assertExpectations(t)
}

func TestCaseStudyService_Assessments(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.caseStudies.On("FindByID", ctx, int64(3)).Return(&model.CaseStudy{ID: 3}, nil)
	f.caseStudies.On("ListAssessments", ctx, int64(3), int64p(1)).Return([]model.CaseStudyAssessment{{ID: 11}}, nil)
	f.caseStudies.On("ListAssessments", ctx, int64(3), (*int64)(nil)).Return([]model.CaseStudyAssessment{{ID: 11}, {ID: 12}}, nil)
	svc := NewCaseStudyService(f.repos(), f.notifier, logger.Nop())

	own, err := svc.Assessments(ctx, 3, admin(), true)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := svc.Assessments(ctx, 3, admin(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	f.assertExpectations(t)
}

func TestCaseStudyService_DeleteAssessment(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	f.caseStudies.On("FindAssessment", ctx, int64(11)).Return(&model.CaseStudyAssessment{ID: 11, CaseStudyID: 3}, nil)
	f.caseStudies.On("DeleteAssessment", ctx, int64(11)).Return(nil)
	f.expectAudit(model.AuditDeleteCaseStudyAssessment)
	assert.NoError(t, NewCaseStudyService(f.repos(), f.notifier, logger.Nop()).DeleteAssessment(ctx, 11, admin()))
	f.assertExpectations(t)

	f = newFixture()
	f.caseStudies.On("FindAssessment", ctx, int64(12)).Return(nil, sql.ErrNoRows)
	assert.ErrorIs(t, NewCaseStudyService(f.repos(), f.notifier, logger.Nop()).DeleteAssessment(ctx, 12, admin()), ErrNotFound)
}
