package domain

type ClubRole string

const (
	ClubRolePresident     ClubRole = "PRESIDENT"
	ClubRoleVicePresident ClubRole = "VICE_PRESIDENT"
	ClubRoleMember        ClubRole = "MEMBER"
)

var ClubRoles = []ClubRole{ClubRolePresident, ClubRoleVicePresident, ClubRoleMember}

// IsLeadership reports whether the role may review registrations and confirm payments.
func (r ClubRole) IsLeadership() bool {
	return r == ClubRolePresident || r == ClubRoleVicePresident
}

// LeadershipRoles lists the roles for which IsLeadership holds.
func LeadershipRoles() []ClubRole {
	roles := []ClubRole{}
	for _, r := range ClubRoles {
		if r.IsLeadership() {
			roles = append(roles, r)
		}
	}
	return roles
}

type Club struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// Actor is the already-authenticated caller of a lifecycle operation together
// with the clubs it leads. It is built once per request and passed explicitly.
type Actor struct {
	UserID        int32   `json:"user_id"`
	LeaderClubIDs []int32 `json:"leader_club_ids"`
}

func (a Actor) LeadsClub(clubID int32) bool {
	for _, id := range a.LeaderClubIDs {
		if id == clubID {
			return true
		}
	}
	return false
}
