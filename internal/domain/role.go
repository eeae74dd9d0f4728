package domain

// Role is a user's effective standing within a single project. It is never
// stored as-is: RoleOwner is derived from projects.owner_id, the membership
// roles come from team_memberships.role, and RoleNone is the absence of both.
// Only the role resolver produces values of this type.
type Role string

const (
	RoleNone        Role = ""
	RoleOwner       Role = "PROJECT_OWNER"
	RoleScrumMaster Role = "SCRUM_MASTER"
	RoleDeveloper   Role = "DEVELOPER"
)

// MembershipRoles are the roles a team membership row may carry. RoleOwner is
// intentionally not among them.
var MembershipRoles = []Role{RoleScrumMaster, RoleDeveloper}

func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}

	return false
}

type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "PENDING"
	MilestoneStatusOpen       MilestoneStatus = "OPEN"
	MilestoneStatusClosed     MilestoneStatus = "CLOSED"
	MilestoneStatusEvaluating MilestoneStatus = "EVALUATING"
	MilestoneStatusCompleted  MilestoneStatus = "COMPLETED"
)

// AcceptsSubmissions reports whether a milestone in this status may receive
// team submissions. Only OPEN and PENDING milestones do.
func (s MilestoneStatus) AcceptsSubmissions() bool {
	return s == MilestoneStatusOpen || s == MilestoneStatusPending
}

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestoneStatusPending, MilestoneStatusOpen, MilestoneStatusClosed,
		MilestoneStatusEvaluating, MilestoneStatusCompleted:
		return true
	}

	return false
}
