package model

import "time"

const (
	TeamStatusCreated   = "created"
	TeamStatusCompleted = "completed"
)

// Permission is a capability granted to a non-lead team member.
type Permission string

const (
	PermissionCreateDrafts          Permission = "create_drafts"
	PermissionPublishOpportunities  Permission = "publish_opportunities"
	PermissionAnswerSellerQuestions Permission = "answer_seller_questions"
	PermissionDownloadResponses     Permission = "download_responses"
	PermissionCreateWorkOrders      Permission = "create_work_orders"
)

// Permissions lists every permission in display order.
var Permissions = []Permission{
	PermissionCreateDrafts,
	PermissionPublishOpportunities,
	PermissionAnswerSellerQuestions,
	PermissionDownloadResponses,
	PermissionCreateWorkOrders,
}

// ValidPermission reports whether p is a known permission.
func ValidPermission(p Permission) bool {
	for _, known := range Permissions {
		if known == p {
			return true
		}
	}
	return false
}

// Team groups buyer users with shared permissions.
type Team struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	EmailAddress string       `json:"emailAddress"`
	Status       string       `json:"status"`
	Members      []TeamMember `json:"members"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// TeamMember is a user's membership of a team.
type TeamMember struct {
	ID           int64        `json:"id"`
	TeamID       int64        `json:"teamId"`
	UserID       int64        `json:"userId"`
	Name         string       `json:"name"`
	EmailAddress string       `json:"emailAddress"`
	IsTeamLead   bool         `json:"isTeamLead"`
	Permissions  []Permission `json:"permissions"`
}

// Has reports whether the member holds the permission. Team leads hold all of them.
func (m TeamMember) Has(p Permission) bool {
	if m.IsTeamLead {
		return true
	}
	for _, held := range m.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

// Leads returns the team's leads.
func (t *Team) Leads() []TeamMember {
	out := make([]TeamMember, 0)
	for _, m := range t.Members {
		if m.IsTeamLead {
			out = append(out, m)
		}
	}
	return out
}

// Member returns the membership of the user, if any.
func (t *Team) Member(userID int64) (TeamMember, bool) {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return TeamMember{}, false
}

// TeamChangeSet is the reconciliation plan between a team's stored and requested membership.
type TeamChangeSet struct {
	AddLeads   []int64                `json:"addLeads"`
	AddMembers []int64                `json:"addMembers"`
	Remove     []int64                `json:"remove"`
	Promote    []int64                `json:"promote"`
	Demote     []int64                `json:"demote"`
	Grant      map[int64][]Permission `json:"grant"`
	Revoke     map[int64][]Permission `json:"revoke"`
}

// Empty reports whether applying the change set would be a no-op.
func (c TeamChangeSet) Empty() bool {
	return len(c.AddLeads) == 0 && len(c.AddMembers) == 0 && len(c.Remove) == 0 &&
		len(c.Promote) == 0 && len(c.Demote) == 0 && len(c.Grant) == 0 && len(c.Revoke) == 0
}
