package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"marketapi/internal/config"
	"marketapi/internal/logger"
	"marketapi/internal/model"
	"marketapi/internal/notify"
)

// Update stages.
const (
	StageAbout       = "about"
	StageLeads       = "leads"
	StageMembers     = "members"
	StagePermissions = "permissions"

	teamObject = "Team"
)

// TeamData is the team part of an update request. Only the fields of the stage are read.
type TeamData struct {
	Name         *string                      `json:"name"`
	EmailAddress *string                      `json:"emailAddress"`
	TeamLeads    []int64                      `json:"teamLeads"`
	TeamMembers  []int64                      `json:"teamMembers"`
	Permissions  map[int64][]model.Permission `json:"permissions"`
}

// UpdateTeamRequest is the body of PATCH /team/:id.
type UpdateTeamRequest struct {
	Stage string   `json:"stage"`
	Team  TeamData `json:"team"`
}

// TeamService manages buyer teams.
type TeamService interface {
	Create(ctx context.Context, user *model.User) (*model.Team, error)
	Get(ctx context.Context, id int64, user *model.User) (*model.Team, error)
	Update(ctx context.Context, id int64, user *model.User, req UpdateTeamRequest) (*model.Team, error)
	Complete(ctx context.Context, id int64, user *model.User) (*model.Team, error)
	// RequirePermission returns a forbidden error when a team member lacks perm.
	RequirePermission(ctx context.Context, user *model.User, perm model.Permission) error
}

type teamService struct {
	repos Repositories
	rec   recorder
	perms permissions
	cfg   config.MarketplaceConfig
	log   *logger.Logger
}

// NewTeamService constructs a TeamService.
func NewTeamService(repos Repositories, n notify.Notifier, cfg config.MarketplaceConfig, log *logger.Logger) TeamService {
	log = log.Component("team_service")
	return &teamService{
		repos: repos,
		rec:   recorder{audit: repos.Audit, notifier: n, log: log},
		perms: permissions{teams: repos.Teams},
		cfg:   cfg,
		log:   log,
	}
}

func (s *teamService) RequirePermission(ctx context.Context, user *model.User, perm model.Permission) error {
	return s.perms.require(ctx, user, perm)
}

func (s *teamService) Create(ctx context.Context, user *model.User) (*model.Team, error) {
	m, err := s.repos.Teams.MembershipForUser(ctx, user.ID)
	if err == nil {
		return nil, conflict("You are already a member of team %d", m.TeamID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return s.repos.Teams.Create(ctx, &model.Team{
		Status:    model.TeamStatusCreated,
		CreatedAt: now(),
	}, user.ID)
}

func (s *teamService) find(ctx context.Context, id int64) (*model.Team, error) {
	t, err := s.repos.Teams.FindByID(ctx, id)
	if err != nil {
		return nil, missing(err, "Team %d not found", id)
	}
	return t, nil
}

func (s *teamService) Get(ctx context.Context, id int64, user *model.User) (*model.Team, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := t.Member(user.ID); !ok && user.Role != model.RoleAdmin {
		return nil, forbidden("You are not a member of this team")
	}
	return t, nil
}

// lead returns the team when user leads it.
func (s *teamService) lead(ctx context.Context, id int64, user *model.User) (*model.Team, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if m, ok := t.Member(user.ID); !ok || !m.IsTeamLead {
		return nil, forbidden("Only team leads can update the team")
	}
	return t, nil
}

func (s *teamService) Update(ctx context.Context, id int64, user *model.User, req UpdateTeamRequest) (*model.Team, error) {
	if req.Stage == "" {
		return nil, invalid("Missing stage")
	}
	t, err := s.lead(ctx, id, user)
	if err != nil {
		return nil, err
	}

	var cs model.TeamChangeSet
	switch req.Stage {
	case StageAbout:
		if err := s.updateAbout(ctx, t, req.Team); err != nil {
			return nil, err
		}
	case StageLeads:
		members := make([]int64, 0)
		for _, m := range t.Members {
			members = append(members, m.UserID)
		}
		cs = PlanTeamChanges(t.Members, req.Team.TeamLeads, members)
	case StageMembers:
		leads := make([]int64, 0)
		for _, m := range t.Leads() {
			leads = append(leads, m.UserID)
		}
		cs = PlanTeamChanges(t.Members, leads, req.Team.TeamMembers)
	case StagePermissions:
		if cs, err = s.planPermissions(t, req.Team.Permissions); err != nil {
			return nil, err
		}
	default:
		return nil, invalid("Invalid stage '%s'", req.Stage)
	}

	if !cs.Empty() {
		if err := s.checkPlan(ctx, t, user, cs); err != nil {
			return nil, err
		}
		if err := s.repos.Teams.ApplyChanges(ctx, t.ID, cs); err != nil {
			return nil, fmt.Errorf("apply team changes: %w", err)
		}
	}
	s.rec.record(ctx, model.AuditUpdateTeam, user.EmailAddress, teamObject, t.ID, map[string]any{
		"stage":   req.Stage,
		"changes": cs,
	})

	updated, err := s.find(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if updated.Status == model.TeamStatusCompleted {
		s.notifyAdded(ctx, updated, user, append(cs.AddLeads, cs.Promote...), cs.AddMembers)
	}
	return updated, nil
}

func (s *teamService) updateAbout(ctx context.Context, t *model.Team, data TeamData) error {
	if data.Name != nil {
		name := strings.TrimSpace(*data.Name)
		if name == "" {
			return invalid("Team name is required")
		}
		t.Name = name
	}
	if data.EmailAddress != nil {
		addr := strings.TrimSpace(*data.EmailAddress)
		if addr != "" && !isEmail(addr) {
			return invalid("%q must be a valid email address", "emailAddress")
		}
		t.EmailAddress = addr
	}
	return s.repos.Teams.UpdateInfo(ctx, t)
}

func (s *teamService) planPermissions(t *model.Team, desired map[int64][]model.Permission) (model.TeamChangeSet, error) {
	for uid, perms := range desired {
		m, ok := t.Member(uid)
		if !ok {
			return model.TeamChangeSet{}, invalid("User %d is not a member of this team", uid)
		}
		if m.IsTeamLead {
			return model.TeamChangeSet{}, invalid("Team leads hold every permission")
		}
		for _, p := range perms {
			if !model.ValidPermission(p) {
				return model.TeamChangeSet{}, invalid("Invalid permission '%s'", p)
			}
		}
	}
	return PlanPermissionChanges(t.Members, desired), nil
}

// checkPlan validates the users a plan brings into the team and keeps at least one lead.
func (s *teamService) checkPlan(ctx context.Context, t *model.Team, caller *model.User, cs model.TeamChangeSet) error {
	leads := len(t.Leads()) + len(cs.AddLeads) + len(cs.Promote) - len(cs.Demote)
	for _, uid := range cs.Remove {
		if m, _ := t.Member(uid); m.IsTeamLead {
			leads--
		}
	}
	if leads < 1 {
		return invalid("A team must have at least one team lead")
	}

	added := append(append([]int64{}, cs.AddLeads...), cs.AddMembers...)
	if len(added) == 0 {
		return nil
	}
	users, err := s.repos.Users.FindByIDs(ctx, added)
	if err != nil {
		return err
	}
	found := make(map[int64]model.User, len(users))
	for _, u := range users {
		found[u.ID] = u
	}
	domain := caller.EmailDomain()
	for _, uid := range added {
		u, ok := found[uid]
		switch {
		case !ok:
			return invalid("User %d does not exist", uid)
		case !u.Active || u.Role != model.RoleBuyer:
			return invalid("User %d is not an active buyer", uid)
		case u.EmailDomain() != domain:
			return invalid("User %d must have an email address ending in @%s", uid, domain)
		}
	}

	others, err := s.repos.Teams.MembershipsForUsers(ctx, added)
	if err != nil {
		return err
	}
	for _, m := range others {
		if m.TeamID != t.ID {
			return conflict("User %d is already a member of another team", m.UserID)
		}
	}
	return nil
}

func (s *teamService) Complete(ctx context.Context, id int64, user *model.User) (*model.Team, error) {
	t, err := s.lead(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if t.Status == model.TeamStatusCompleted {
		return nil, invalid("Team is already completed")
	}
	if len(t.Leads()) == 0 {
		return nil, invalid("A team must have at least one team lead")
	}
	if err := s.repos.Teams.UpdateStatus(ctx, t.ID, model.TeamStatusCompleted); err != nil {
		return nil, missing(err, "Team %d not found", id)
	}
	t.Status = model.TeamStatusCompleted
	s.rec.record(ctx, model.AuditCompleteTeam, user.EmailAddress, teamObject, t.ID, map[string]any{"teamId": t.ID})

	var leads, members []int64
	for _, m := range t.Members {
		if m.UserID == user.ID {
			continue
		}
		if m.IsTeamLead {
			leads = append(leads, m.UserID)
		} else {
			members = append(members, m.UserID)
		}
	}
	s.notifyAdded(ctx, t, user, leads, members)
	return t, nil
}

// notifyAdded tells new leads and members about their place in the team.
func (s *teamService) notifyAdded(ctx context.Context, t *model.Team, caller *model.User, leads, members []int64) {
	teamURL := fmt.Sprintf("%s/2/team/%d", s.cfg.FrontendAddress, t.ID)
	for _, uid := range leads {
		m, ok := t.Member(uid)
		if !ok || m.EmailAddress == "" {
			continue
		}
		if s.rec.send(ctx, &notify.Notification{
			Kind:    notify.KindTeamLeadAdded,
			To:      []string{m.EmailAddress},
			Subject: "You have been upgraded to a team lead",
			Params:  map[string]any{"team_name": t.Name, "team_url": teamURL, "name": m.Name},
		}) {
			s.rec.record(ctx, model.AuditTeamLeadAdded, caller.EmailAddress, teamObject, t.ID, map[string]any{
				"to_address": m.EmailAddress,
			})
		}
	}
	for _, uid := range members {
		m, ok := t.Member(uid)
		if !ok || m.EmailAddress == "" {
			continue
		}
		subject := fmt.Sprintf("%s has invited you to join %s", caller.Name, t.Name)
		if s.rec.send(ctx, &notify.Notification{
			Kind:    notify.KindTeamMemberAdded,
			To:      []string{m.EmailAddress},
			Subject: subject,
			Params:  map[string]any{"team_name": t.Name, "team_url": teamURL, "inviter": caller.Name},
		}) {
			s.rec.record(ctx, model.AuditTeamMemberAdded, caller.EmailAddress, teamObject, t.ID, map[string]any{
				"to_address": m.EmailAddress,
				"subject":    subject,
			})
		}
	}
}
