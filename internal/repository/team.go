package repository

import (
	"context"

	"marketapi/internal/model"
)

// TeamRepository persists teams, members and member permissions.
type TeamRepository interface {
	// Create inserts the team and makes the owner its first team lead.
	Create(ctx context.Context, t *model.Team, ownerID int64) (*model.Team, error)
	// FindByID returns the team with members and their permissions.
	FindByID(ctx context.Context, id int64) (*model.Team, error)
	UpdateInfo(ctx context.Context, t *model.Team) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	// ApplyChanges applies a reconciliation plan atomically.
	ApplyChanges(ctx context.Context, teamID int64, cs model.TeamChangeSet) error
	// MembershipForUser returns the user's membership in any team, or sql.ErrNoRows.
	MembershipForUser(ctx context.Context, userID int64) (*model.TeamMember, error)
	// MembershipsForUsers returns memberships of the given users across all teams.
	MembershipsForUsers(ctx context.Context, userIDs []int64) ([]model.TeamMember, error)
}
