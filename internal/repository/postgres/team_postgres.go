package postgres

import (
	"context"
	"database/sql"
	"sort"

	"marketapi/internal/database"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// TeamPostgres is a PostgreSQL implementation of repository.TeamRepository.
type TeamPostgres struct {
	db *sql.DB
}

// NewTeamPostgres creates a new TeamPostgres repository.
func NewTeamPostgres(db *sql.DB) *TeamPostgres {
	return &TeamPostgres{db: db}
}

var _ repository.TeamRepository = (*TeamPostgres)(nil)

const memberSelect = `
	SELECT tm.id, tm.team_id, tm.user_id, u.name, u.email_address, tm.is_team_lead
	FROM team_members tm
	JOIN users u ON u.id = tm.user_id
`

func scanMember(s rowScanner) (*model.TeamMember, error) {
	var m model.TeamMember
	if err := s.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Name, &m.EmailAddress, &m.IsTeamLead); err != nil {
		return nil, err
	}
	m.Permissions = []model.Permission{}
	return &m, nil
}

// Create inserts the team with the owner as its first lead.
func (r *TeamPostgres) Create(ctx context.Context, t *model.Team, ownerID int64) (*model.Team, error) {
	var id int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const qTeam = `
			INSERT INTO teams (name, email_address, status, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, qTeam, t.Name, t.EmailAddress, t.Status, t.CreatedAt).Scan(&id); err != nil {
			return err
		}
		const qLead = `INSERT INTO team_members (team_id, user_id, is_team_lead) VALUES ($1, $2, true)`
		_, err := tx.ExecContext(ctx, qLead, id, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByID returns the team with its members and their permissions.
func (r *TeamPostgres) FindByID(ctx context.Context, id int64) (*model.Team, error) {
	const qTeam = `SELECT id, name, email_address, status, created_at FROM teams WHERE id = $1`
	var t model.Team
	if err := r.db.QueryRowContext(ctx, qTeam, id).Scan(&t.ID, &t.Name, &t.EmailAddress, &t.Status, &t.CreatedAt); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, memberSelect+` WHERE tm.team_id = $1 ORDER BY tm.id`, id)
	if err != nil {
		return nil, err
	}
	t.Members = make([]model.TeamMember, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		t.Members = append(t.Members, *m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	perms, err := r.permissions(ctx, `
		SELECT p.team_member_id, p.permission
		FROM team_member_permissions p
		JOIN team_members tm ON tm.id = p.team_member_id
		WHERE tm.team_id = $1
		ORDER BY p.team_member_id, p.permission
	`, id)
	if err != nil {
		return nil, err
	}
	for i := range t.Members {
		if held, ok := perms[t.Members[i].ID]; ok {
			t.Members[i].Permissions = held
		}
	}
	return &t, nil
}

func (r *TeamPostgres) permissions(ctx context.Context, q string, arg any) (map[int64][]model.Permission, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]model.Permission)
	for rows.Next() {
		var (
			memberID int64
			perm     string
		)
		if err := rows.Scan(&memberID, &perm); err != nil {
			return nil, err
		}
		out[memberID] = append(out[memberID], model.Permission(perm))
	}
	return out, rows.Err()
}

// UpdateInfo stores the team's name and address.
func (r *TeamPostgres) UpdateInfo(ctx context.Context, t *model.Team) error {
	const q = `UPDATE teams SET name = $2, email_address = $3 WHERE id = $1`
	return r.execOne(ctx, q, t.ID, t.Name, t.EmailAddress)
}

// UpdateStatus moves the team to a new status.
func (r *TeamPostgres) UpdateStatus(ctx context.Context, id int64, status string) error {
	const q = `UPDATE teams SET status = $2 WHERE id = $1`
	return r.execOne(ctx, q, id, status)
}

func (r *TeamPostgres) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ApplyChanges applies removals, additions, promotions, demotions, grants and revokes in that order.
func (r *TeamPostgres) ApplyChanges(ctx context.Context, teamID int64, cs model.TeamChangeSet) error {
	const (
		qRemove  = `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`
		qAdd     = `INSERT INTO team_members (team_id, user_id, is_team_lead) VALUES ($1, $2, $3)`
		qLead    = `UPDATE team_members SET is_team_lead = $3 WHERE team_id = $1 AND user_id = $2`
		qDropAll = `
			DELETE FROM team_member_permissions
			WHERE team_member_id = (SELECT id FROM team_members WHERE team_id = $1 AND user_id = $2)
		`
		qGrant = `
			INSERT INTO team_member_permissions (team_member_id, permission)
			SELECT id, $3 FROM team_members WHERE team_id = $1 AND user_id = $2
			ON CONFLICT DO NOTHING
		`
		qRevoke = `
			DELETE FROM team_member_permissions
			WHERE permission = $3
			  AND team_member_id = (SELECT id FROM team_members WHERE team_id = $1 AND user_id = $2)
		`
	)

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, uid := range cs.Remove {
			if _, err := tx.ExecContext(ctx, qRemove, teamID, uid); err != nil {
				return err
			}
		}
		for _, uid := range cs.AddLeads {
			if _, err := tx.ExecContext(ctx, qAdd, teamID, uid, true); err != nil {
				return err
			}
		}
		for _, uid := range cs.AddMembers {
			if _, err := tx.ExecContext(ctx, qAdd, teamID, uid, false); err != nil {
				return err
			}
		}
		for _, uid := range cs.Promote {
			if _, err := tx.ExecContext(ctx, qLead, teamID, uid, true); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, qDropAll, teamID, uid); err != nil {
				return err
			}
		}
		for _, uid := range cs.Demote {
			if _, err := tx.ExecContext(ctx, qLead, teamID, uid, false); err != nil {
				return err
			}
		}
		for _, uid := range sortedKeys(cs.Grant) {
			for _, p := range cs.Grant[uid] {
				if _, err := tx.ExecContext(ctx, qGrant, teamID, uid, string(p)); err != nil {
					return err
				}
			}
		}
		for _, uid := range sortedKeys(cs.Revoke) {
			for _, p := range cs.Revoke[uid] {
				if _, err := tx.ExecContext(ctx, qRevoke, teamID, uid, string(p)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func sortedKeys(m map[int64][]model.Permission) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// MembershipForUser returns the user's membership with permissions.
func (r *TeamPostgres) MembershipForUser(ctx context.Context, userID int64) (*model.TeamMember, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx, memberSelect+` WHERE tm.user_id = $1`, userID))
	if err != nil {
		return nil, err
	}
	perms, err := r.permissions(ctx, `
		SELECT team_member_id, permission
		FROM team_member_permissions
		WHERE team_member_id = $1
		ORDER BY permission
	`, m.ID)
	if err != nil {
		return nil, err
	}
	if held, ok := perms[m.ID]; ok {
		m.Permissions = held
	}
	return m, nil
}

// MembershipsForUsers returns memberships of the given users, without permissions.
func (r *TeamPostgres) MembershipsForUsers(ctx context.Context, userIDs []int64) ([]model.TeamMember, error) {
	out := make([]model.TeamMember, 0)
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, memberSelect+` WHERE tm.user_id = ANY($1) ORDER BY tm.user_id`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
