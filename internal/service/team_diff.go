package service

import (
	"sort"

	"marketapi/internal/model"
)

// PlanTeamChanges reconciles the stored members against the requested leads and members.
// A user listed as both is a lead. Stored members missing from both lists are removed.
// The plan carries no permission changes; promoted members lose theirs when it is applied.
func PlanTeamChanges(current []model.TeamMember, leads, members []int64) model.TeamChangeSet {
	stored := make(map[int64]model.TeamMember, len(current))
	for _, m := range current {
		stored[m.UserID] = m
	}

	wantLead := make(map[int64]bool)
	for _, id := range leads {
		wantLead[id] = true
	}
	for _, id := range members {
		if !wantLead[id] {
			wantLead[id] = false
		}
	}

	var cs model.TeamChangeSet
	for id, lead := range wantLead {
		m, ok := stored[id]
		switch {
		case !ok && lead:
			cs.AddLeads = append(cs.AddLeads, id)
		case !ok:
			cs.AddMembers = append(cs.AddMembers, id)
		case lead && !m.IsTeamLead:
			cs.Promote = append(cs.Promote, id)
		case !lead && m.IsTeamLead:
			cs.Demote = append(cs.Demote, id)
		}
	}
	for id := range stored {
		if _, ok := wantLead[id]; !ok {
			cs.Remove = append(cs.Remove, id)
		}
	}

	for _, ids := range [][]int64{cs.AddLeads, cs.AddMembers, cs.Remove, cs.Promote, cs.Demote} {
		sortIDs(ids)
	}
	return cs
}

// PlanPermissionChanges diffs the requested permissions of non-lead members against the stored ones.
// Members absent from desired, leads and non-members are left alone.
func PlanPermissionChanges(current []model.TeamMember, desired map[int64][]model.Permission) model.TeamChangeSet {
	var cs model.TeamChangeSet
	for _, m := range current {
		want, ok := desired[m.UserID]
		if !ok || m.IsTeamLead {
			continue
		}
		held := permissionSet(m.Permissions)
		wanted := permissionSet(want)

		var grant, revoke []model.Permission
		for _, p := range model.Permissions {
			switch {
			case wanted[p] && !held[p]:
				grant = append(grant, p)
			case held[p] && !wanted[p]:
				revoke = append(revoke, p)
			}
		}
		if len(grant) > 0 {
			if cs.Grant == nil {
				cs.Grant = make(map[int64][]model.Permission)
			}
			cs.Grant[m.UserID] = grant
		}
		if len(revoke) > 0 {
			if cs.Revoke == nil {
				cs.Revoke = make(map[int64][]model.Permission)
			}
			cs.Revoke[m.UserID] = revoke
		}
	}
	return cs
}

func permissionSet(ps []model.Permission) map[model.Permission]bool {
	out := make(map[model.Permission]bool, len(ps))
	for _, p := range ps {
		out[p] = true
	}
	return out
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
