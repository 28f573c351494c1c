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

func TestQuestionService_Questions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.briefs.On("FindByID", ctx, int64(1)).Return(&model.Brief{
		ID:   1,
		Data: map[string]any{"title": "Portal", "internalReference": "DTA-42"},
	}, nil)
	f.questions.On("ListQuestions", ctx, int64(1)).Return([]model.BriefQuestion{{ID: 1}, {ID: 2}}, nil)
	f.questions.On("ListAnswers", ctx, int64(1)).Return([]model.BriefClarificationQuestion{{ID: 5}}, nil)
	svc := NewQuestionService(f.repos(), f.notifier, logger.Nop())

	qs, err := svc.Questions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, BriefRef{Title: "Portal", ID: 1, InternalReference: "DTA-42"}, qs.Brief)
	assert.Equal(t, QuestionCount{Questions: 2, Answers: 1}, qs.QuestionCount)

	as, err := svc.Answers(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, as.Answers, 1)
	assert.Equal(t, QuestionCount{Questions: 2, Answers: 1}, as.QuestionCount)
	f.assertExpectations(t)
}

func TestQuestionService_Question(t *testing.T) {
	ctx := context.Background()
	brief := &model.Brief{ID: 1, Data: map[string]any{"title": "Portal"}}

	tests := []struct {
		name       string
		briefID    int64
		questionID int64
		setup      func(f *fixture)
		wantKind   error
		wantMsg    string
	}{
		{
			name: "found", briefID: 1, questionID: 4,
			setup: func(f *fixture) {
				f.briefs.On("FindByID", ctx, int64(1)).Return(brief, nil)
				f.questions.On("FindQuestion", ctx, int64(4)).
					Return(&model.BriefQuestion{ID: 4, BriefID: 1, Question: "Is travel paid?"}, nil)
			},
		},
		{
			name: "unknown brief", briefID: 9, questionID: 4,
			setup: func(f *fixture) {
				f.briefs.On("FindByID", ctx, int64(9)).Return(nil, sql.ErrNoRows)
			},
			wantKind: ErrNotFound,
			wantMsg:  "Invalid brief id '9'",
		},
		{
			name: "unknown question", briefID: 1, questionID: 5,
			setup: func(f *fixture) {
				f.briefs.On("FindByID", ctx, int64(1)).Return(brief, nil)
				f.questions.On("FindQuestion", ctx, int64(5)).Return(nil, sql.ErrNoRows)
			},
			wantKind: ErrNotFound,
			wantMsg:  "Invalid question id '5'",
		},
		{
			name: "question on another brief", briefID: 1, questionID: 6,
			setup: func(f *fixture) {
				f.briefs.On("FindByID", ctx, int64(1)).Return(brief, nil)
				f.questions.On("FindQuestion", ctx, int64(6)).Return(&model.BriefQuestion{ID: 6, BriefID: 2}, nil)
			},
			wantKind: ErrNotFound,
			wantMsg:  "Invalid question id '6'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)

			q, err := NewQuestionService(f.repos(), f.notifier, logger.Nop()).Question(ctx, tt.briefID, tt.questionID)
			if tt.wantKind != nil {
				require.ErrorIs(t, err, tt.wantKind)
				assert.Equal(t, tt.wantMsg, Message(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Is travel paid?", q.Question.Question)
			assert.Equal(t, BriefRef{Title: "Portal", ID: 1}, q.Brief)
			f.assertExpectations(t)
		})
	}
}

func TestQuestionService_PublishAnswer(t *testing.T) {
	freezeNow(t, testNow)
	ctx := context.Background()
	owned := &model.Brief{ID: 1, UserIDs: []int64{10}}

	tests := []struct {
		name     string
		user     *model.User
		req      PublishAnswerRequest
		setup    func(f *fixture)
		wantKind error
		wantMsg  string
	}{
		{
			name: "buyer outside any team",
			user: buyer(10),
			req:  PublishAnswerRequest{Question: " When? ", Answer: "Soon"},
			setup: func(f *fixture) {
				f.teams.On("MembershipForUser", ctx, int64(10)).Return(nil, sql.ErrNoRows)
				f.questions.On("CreateAnswer", ctx, &model.BriefClarificationQuestion{
					BriefID: 1, UserID: 10, Question: "When?", Answer: "Soon", PublishedAt: testNow,
				}).Return(&model.BriefClarificationQuestion{ID: 9}, nil)
				f.expectAudit(model.AuditCreateBriefClarificationQuestion)
			},
		},
		{
			name:     "not on brief",
			user:     buyer(11),
			req:      PublishAnswerRequest{Question: "When?", Answer: "Soon"},
			wantKind: ErrForbidden,
		},
		{
			name: "member without permission",
			user: buyer(10),
			req:  PublishAnswerRequest{Question: "When?", Answer: "Soon"},
			setup: func(f *fixture) {
				f.teams.On("MembershipForUser", ctx, int64(10)).Return(&model.TeamMember{UserID: 10}, nil)
			},
			wantKind: ErrForbidden,
			wantMsg:  "You do not have permission to answer seller questions",
		},
		{
			name: "blank answer",
			user: buyer(10),
			req:  PublishAnswerRequest{Question: "When?", Answer: "  "},
			setup: func(f *fixture) {
				f.teams.On("MembershipForUser", ctx, int64(10)).Return(&model.TeamMember{
					UserID: 10, Permissions: []model.Permission{model.PermissionAnswerSellerQuestions},
				}, nil)
			},
			wantKind: ErrValidation,
			wantMsg:  "Answer is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.briefs.On("FindByID", ctx, int64(1)).Return(owned, nil)
			if tt.setup != nil {
				tt.setup(f)
			}

			saved, err := NewQuestionService(f.repos(), f.notifier, logger.Nop()).PublishAnswer(ctx, 1, tt.user, tt.req)
			if tt.wantKind != nil {
				require.ErrorIs(t, err, tt.wantKind)
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, Message(err))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(9), saved.ID)
			f.assertExpectations(t)
		})
	}
}

func TestAssessorService_Add(t *testing.T) {
	ctx := context.Background()
	owned := &model.Brief{ID: 1, UserIDs: []int64{10}}

	t.Run("links known users", func(t *testing.T) {
		f := newFixture()
		f.briefs.On("FindByID", ctx, int64(1)).Return(owned, nil)
		f.users.On("FindByEmail", ctx, "pat@agency.gov.au").Return(&model.User{ID: 30}, nil)
		f.users.On("FindByEmail", ctx, "sam@agency.gov.au").Return(nil, sql.ErrNoRows)
		f.assessors.On("Create", ctx, mock.MatchedBy(func(a *model.BriefAssessor) bool {
			return a.EmailAddress == "pat@agency.gov.au" && a.UserID != nil && *a.UserID == 30 && a.ViewDayRates
		})).Return(&model.BriefAssessor{ID: 1, EmailAddress: "pat@agency.gov.au"}, nil)
		f.assessors.On("Create", ctx, mock.MatchedBy(func(a *model.BriefAssessor) bool {
			return a.EmailAddress == "sam@agency.gov.au" && a.UserID == nil
		})).Return(&model.BriefAssessor{ID: 2, EmailAddress: "sam@agency.gov.au"}, nil)
		f.audit.On("Create", mock.Anything, mock.MatchedBy(func(e *model.AuditEvent) bool {
			return e.Type == model.AuditCreateBriefAssessor
		})).Return(nil).Twice()

		out, err := NewAssessorService(f.repos(), f.notifier, logger.Nop()).Add(ctx, 1, buyer(10), []AssessorInput{
			{EmailAddress: " Pat@Agency.gov.au", ViewDayRates: true},
			{EmailAddress: "sam@agency.gov.au"},
		})
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, int64(2), out[1].ID)
		f.assertExpectations(t)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewAssessorService(newFixture().repos(), nil, logger.Nop()).Add(ctx, 1, buyer(10), nil)
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "At least one assessor is required", Message(err))
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := NewAssessorService(newFixture().repos(), nil, logger.Nop()).Add(ctx, 1, buyer(10),
			[]AssessorInput{{EmailAddress: "nope"}})
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, `"email_address" must be a valid email address`, Message(err))
	})

	t.Run("not owner", func(t *testing.T) {
		f := newFixture()
		f.briefs.On("FindByID", ctx, int64(1)).Return(owned, nil)
		_, err := NewAssessorService(f.repos(), f.notifier, logger.Nop()).Add(ctx, 1, buyer(11),
			[]AssessorInput{{EmailAddress: "pat@agency.gov.au"}})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
