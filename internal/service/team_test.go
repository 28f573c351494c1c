package service

import (
	"context"
	"database/sql"
	"testing"

	"marketapi/internal/logger"
	"marketapi/internal/model"
	"marketapi/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testTeam(status string) *model.Team {
	return &model.Team{
		ID:     4,
		Name:   "Digital",
		Status: status,
		Members: []model.TeamMember{
			{UserID: 10, Name: "Lee", EmailAddress: "buyer@agency.gov.au", IsTeamLead: true},
			{UserID: 2, Name: "Kim", EmailAddress: "kim@agency.gov.au", Permissions: []model.Permission{model.PermissionCreateDrafts}},
		},
	}
}

func newTeamService(f *fixture) TeamService {
	return NewTeamService(f.repos(), f.notifier, testMarketplace, logger.Nop())
}

func TestTeamService_Create(t *testing.T) {
	freezeNow(t, testNow)
	ctx := context.Background()

	t.Run("already in a team", func(t *testing.T) {
		f := newFixture()
		f.teams.On("MembershipForUser", ctx, int64(10)).Return(&model.TeamMember{TeamID: 9}, nil)

		_, err := newTeamService(f).Create(ctx, buyer(10))
		require.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, "You are already a member of team 9", Message(err))
	})

	t.Run("creator leads the new team", func(t *testing.T) {
		f := newFixture()
		f.teams.On("MembershipForUser", ctx, int64(10)).Return(nil, sql.ErrNoRows)
		f.teams.On("Create", ctx, &model.Team{Status: model.TeamStatusCreated, CreatedAt: testNow}, int64(10)).
			Return(testTeam(model.TeamStatusCreated), nil)

		team, err := newTeamService(f).Create(ctx, buyer(10))
		require.NoError(t, err)
		assert.Len(t, team.Leads(), 1)
		f.assertExpectations(t)
	})
}

func TestTeamService_Get(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.teams.On("FindByID", ctx, int64(4)).Return(testTeam(model.TeamStatusCreated), nil)
	f.teams.On("FindByID", ctx, int64(5)).Return(nil, sql.ErrNoRows)
	svc := newTeamService(f)

	_, err := svc.Get(ctx, 4, buyer(10))
	assert.NoError(t, err)

	_, err = svc.Get(ctx, 4, buyer(99))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, 4, &model.User{ID: 1, Role: model.RoleAdmin})
	assert.NoError(t, err)

	_, err = svc.Get(ctx, 5, buyer(10))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTeamService_Update(t *testing.T) {
	freezeNow(t, testNow)
	ctx := context.Background()

	tests := []struct {
		name    string
		status  string
		caller  *model.User
		req     UpdateTeamRequest
		setup   func(f *fixture)
		joined  []model.TeamMember
		kind    error
		wantMsg string
	}{
		{
			name:    "missing stage",
			req:     UpdateTeamRequest{},
			kind:    ErrValidation,
			wantMsg: "Missing stage",
		},
		{
			name:    "members cannot update",
			caller:  &model.User{ID: 2, Role: model.RoleBuyer, EmailAddress: "kim@agency.gov.au"},
			req:     UpdateTeamRequest{Stage: StageAbout},
			kind:    ErrForbidden,
			wantMsg: "Only team leads can update the team",
		},
		{
			name:    "unknown stage",
			req:     UpdateTeamRequest{Stage: "colours"},
			kind:    ErrValidation,
			wantMsg: "Invalid stage 'colours'",
		},
		{
			name: "about",
			req:  UpdateTeamRequest{Stage: StageAbout, Team: TeamData{Name: strp(" Digital Delivery "), EmailAddress: strp("team@agency.gov.au")}},
			setup: func(f *fixture) {
				f.teams.On("UpdateInfo", ctx, mock.MatchedBy(func(t *model.Team) bool {
					return t.Name == "Digital Delivery" && t.EmailAddress == "team@agency.gov.au"
				})).Return(nil)
				f.expectAudit(model.AuditUpdateTeam)
			},
		},
		{
			name:    "blank name",
			req:     UpdateTeamRequest{Stage: StageAbout, Team: TeamData{Name: strp("  ")}},
			kind:    ErrValidation,
			wantMsg: "Team name is required",
		},
		{
			name:    "last lead cannot step down",
			req:     UpdateTeamRequest{Stage: StageLeads, Team: TeamData{TeamLeads: []int64{}}},
			kind:    ErrValidation,
			wantMsg: "A team must have at least one team lead",
		},
		{
			name: "member from another domain",
			req:  UpdateTeamRequest{Stage: StageMembers, Team: TeamData{TeamMembers: []int64{2, 3}}},
			setup: func(f *fixture) {
				f.users.On("FindByIDs", ctx, []int64{3}).Return([]model.User{
					{ID: 3, Role: model.RoleBuyer, Active: true, EmailAddress: "x@elsewhere.gov.au"},
				}, nil)
			},
			kind:    ErrValidation,
			wantMsg: "User 3 must have an email address ending in @agency.gov.au",
		},
		{
			name: "inactive user",
			req:  UpdateTeamRequest{Stage: StageMembers, Team: TeamData{TeamMembers: []int64{3}}},
			setup: func(f *fixture) {
				f.users.On("FindByIDs", ctx, []int64{3}).Return([]model.User{
					{ID: 3, Role: model.RoleBuyer, EmailAddress: "x@agency.gov.au"},
				}, nil)
			},
			kind:    ErrValidation,
			wantMsg: "User 3 is not an active buyer",
		},
		{
			name: "unknown user",
			req:  UpdateTeamRequest{Stage: StageLeads, Team: TeamData{TeamLeads: []int64{10, 8}}},
			setup: func(f *fixture) {
				f.users.On("FindByIDs", ctx, []int64{8}).Return([]model.User{}, nil)
			},
			kind:    ErrValidation,
			wantMsg: "User 8 does not exist",
		},
		{
			name: "user in another team",
			req:  UpdateTeamRequest{Stage: StageMembers, Team: TeamData{TeamMembers: []int64{2, 3}}},
			setup: func(f *fixture) {
				f.users.On("FindByIDs", ctx, []int64{3}).Return([]model.User{
					{ID: 3, Role: model.RoleBuyer, Active: true, EmailAddress: "x@agency.gov.au"},
				}, nil)
				f.teams.On("MembershipsForUsers", ctx, []int64{3}).Return([]model.TeamMember{{UserID: 3, TeamID: 8}}, nil)
			},
			kind:    ErrConflict,
			wantMsg: "User 3 is already a member of another team",
		},
		{
			name:    "permission for a lead",
			req:     UpdateTeamRequest{Stage: StagePermissions, Team: TeamData{Permissions: map[int64][]model.Permission{10: {model.PermissionCreateDrafts}}}},
			kind:    ErrValidation,
			wantMsg: "Team leads hold every permission",
		},
		{
			name:    "unknown permission",
			req:     UpdateTeamRequest{Stage: StagePermissions, Team: TeamData{Permissions: map[int64][]model.Permission{2: {"fly"}}}},
			kind:    ErrValidation,
			wantMsg: "Invalid permission 'fly'",
		},
		{
			name: "permissions",
			req: UpdateTeamRequest{Stage: StagePermissions, Team: TeamData{Permissions: map[int64][]model.Permission{
				2: {model.PermissionPublishOpportunities},
			}}},
			setup: func(f *fixture) {
				f.teams.On("ApplyChanges", ctx, int64(4), model.TeamChangeSet{
					Grant:  map[int64][]model.Permission{2: {model.PermissionPublishOpportunities}},
					Revoke: map[int64][]model.Permission{2: {model.PermissionCreateDrafts}},
				}).Return(nil)
				f.expectAudit(model.AuditUpdateTeam)
			},
		},
		{
			name:   "members of a completed team are told",
			status: model.TeamStatusCompleted,
			req:    UpdateTeamRequest{Stage: StageMembers, Team: TeamData{TeamMembers: []int64{3}}},
			joined: []model.TeamMember{{UserID: 3, Name: "Ash", EmailAddress: "new@agency.gov.au"}},
			setup: func(f *fixture) {
				f.users.On("FindByIDs", ctx, []int64{3}).Return([]model.User{
					{ID: 3, Role: model.RoleBuyer, Active: true, EmailAddress: "new@agency.gov.au"},
				}, nil)
				f.teams.On("MembershipsForUsers", ctx, []int64{3}).Return([]model.TeamMember{}, nil)
				f.teams.On("ApplyChanges", ctx, int64(4), model.TeamChangeSet{
					AddMembers: []int64{3},
					Remove:     []int64{2},
				}).Return(nil)
				f.expectAudit(model.AuditUpdateTeam)
				f.notifier.On("Enqueue", ctx, mock.MatchedBy(func(n *notify.Notification) bool {
					return n.Kind == notify.KindTeamMemberAdded && n.To[0] == "new@agency.gov.au" &&
						n.Subject == "Lee has invited you to join Digital"
				})).Return(nil)
				f.expectAudit(model.AuditTeamMemberAdded)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			status := tt.status
			if status == "" {
				status = model.TeamStatusCreated
			}
			if tt.joined != nil {
				f.teams.On("FindByID", ctx, int64(4)).Return(testTeam(status), nil).Once()
			}
			reloaded := testTeam(status)
			reloaded.Members = append(reloaded.Members, tt.joined...)
			f.teams.On("FindByID", ctx, int64(4)).Return(reloaded, nil).Maybe()
			if tt.setup != nil {
				tt.setup(f)
			}

			caller := tt.caller
			if caller == nil {
				caller = &model.User{ID: 10, Name: "Lee", Role: model.RoleBuyer, EmailAddress: "buyer@agency.gov.au"}
			}
			got, err := newTeamService(f).Update(ctx, 4, caller, tt.req)
			if tt.kind != nil {
				require.ErrorIs(t, err, tt.kind)
				assert.Equal(t, tt.wantMsg, Message(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(4), got.ID)
			}
			f.assertExpectations(t)
		})
	}
}

func TestTeamService_Complete(t *testing.T) {
	ctx := context.Background()
	caller := &model.User{ID: 10, Name: "Lee", Role: model.RoleBuyer, EmailAddress: "buyer@agency.gov.au"}

	t.Run("notifies everyone but the caller", func(t *testing.T) {
		f := newFixture()
		team := testTeam(model.TeamStatusCreated)
		team.Members = append(team.Members, model.TeamMember{UserID: 6, EmailAddress: "co@agency.gov.au", IsTeamLead: true})
		f.teams.On("FindByID", ctx, int64(4)).Return(team, nil)
		f.teams.On("UpdateStatus", ctx, int64(4), model.TeamStatusCompleted).Return(nil)
		f.expectAudit(model.AuditCompleteTeam)
		f.notifier.On("Enqueue", ctx, mock.MatchedBy(func(n *notify.Notification) bool {
			return n.Kind == notify.KindTeamLeadAdded && n.To[0] == "co@agency.gov.au" &&
				n.Subject == "You have been upgraded to a team lead"
		})).Return(nil).Once()
		f.notifier.On("Enqueue", ctx, mock.MatchedBy(func(n *notify.Notification) bool {
			return n.Kind == notify.KindTeamMemberAdded && n.To[0] == "kim@agency.gov.au"
		})).Return(nil).Once()
		f.expectAudit(model.AuditTeamLeadAdded)
		f.expectAudit(model.AuditTeamMemberAdded)

		got, err := newTeamService(f).Complete(ctx, 4, caller)
		require.NoError(t, err)
		assert.Equal(t, model.TeamStatusCompleted, got.Status)
		f.assertExpectations(t)
	})

	t.Run("already completed", func(t *testing.T) {
		f := newFixture()
		f.teams.On("FindByID", ctx, int64(4)).Return(testTeam(model.TeamStatusCompleted), nil)

		_, err := newTeamService(f).Complete(ctx, 4, caller)
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Team is already completed", Message(err))
	})
}
