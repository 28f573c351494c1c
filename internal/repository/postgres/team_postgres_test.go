package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketapi/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, name, email_address, status, created_at FROM teams").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email_address", "status", "created_at"}).
			AddRow(int64(2), "Procurement", "team@agency.gov.au", model.TeamStatusCompleted, now))
	mock.ExpectQuery("FROM team_members tm (.+) WHERE tm.team_id = ").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "user_id", "name", "email_address", "is_team_lead"}).
			AddRow(int64(10), int64(2), int64(100), "Lead", "lead@agency.gov.au", true).
			AddRow(int64(11), int64(2), int64(101), "Member", "member@agency.gov.au", false))
	mock.ExpectQuery("FROM team_member_permissions p").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"team_member_id", "permission"}).
			AddRow(int64(11), "create_drafts").
			AddRow(int64(11), "publish_opportunities"))

	team, err := NewTeamPostgres(db).FindByID(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, team.Members, 2)
	assert.Empty(t, team.Members[0].Permissions)
	assert.Equal(t, []model.Permission{model.PermissionCreateDrafts, model.PermissionPublishOpportunities}, team.Members[1].Permissions)
	assert.Len(t, team.Leads(), 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamPostgres_ApplyChanges(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTeamPostgres(db)
	cs := model.TeamChangeSet{
		Remove:     []int64{5},
		AddMembers: []int64{6},
		Promote:    []int64{7},
		Grant:      map[int64][]model.Permission{6: {model.PermissionCreateDrafts}},
		Revoke:     map[int64][]model.Permission{8: {model.PermissionDownloadResponses}},
	}

	t.Run("applies in order", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM team_members WHERE").WithArgs(int64(1), int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO team_members").WithArgs(int64(1), int64(6), false).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE team_members SET is_team_lead").WithArgs(int64(1), int64(7), true).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM team_member_permissions").WithArgs(int64(1), int64(7)).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("INSERT INTO team_member_permissions").WithArgs(int64(1), int64(6), "create_drafts").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM team_member_permissions").WithArgs(int64(1), int64(8), "download_responses").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.ApplyChanges(context.Background(), 1, cs))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM team_members WHERE").WillReturnError(boom)
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.ApplyChanges(context.Background(), 1, cs), boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTeamPostgres_UpdateStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE teams SET status").
		WithArgs(int64(4), model.TeamStatusCompleted).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewTeamPostgres(db).UpdateStatus(context.Background(), 4, model.TeamStatusCompleted)

	assert.True(t, IsNoRowsError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
