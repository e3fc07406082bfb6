package models

import "fmt"

type Role string

const (
	RoleIntern    Role = "intern"
	RoleTrainee   Role = "trainee"
	RoleAssociate Role = "associate"
	RoleLead      Role = "lead"
	RoleManager   Role = "manager"
)

// Roles is the rank order, lowest first. Comparison is by position in
// this slice, never lexical. The slice is fixed at compile time.
var Roles = []Role{RoleIntern, RoleTrainee, RoleAssociate, RoleLead, RoleManager}

// Rank returns the position of r in Roles. An unknown role is a data
// error and must not be ranked; it never silently defaults.
func Rank(r Role) (int, error) {
	for i, role := range Roles {
		if role == r {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", r)
}

// ValidRole reports whether r appears in the role sequence.
func ValidRole(r Role) bool {
	_, err := Rank(r)
	return err == nil
}

// CanAssign reports whether an actor may assign a task to a target.
// Assigning to yourself is always allowed; assigning to anyone else
// requires a strictly higher rank than the target. Unknown roles deny.
func CanAssign(actor, target Role, isSelf bool) bool {
	if isSelf {
		return true
	}
	a, err := Rank(actor)
	if err != nil {
		return false
	}
	t, err := Rank(target)
	if err != nil {
		return false
	}
	return a > t
}

// CanDelete reports whether a user may delete a task created by a user
// of the given role. Same-or-higher rank than the creator suffices;
// note the deliberate >= here versus CanAssign's strict >.
func CanDelete(deleter, creator Role) bool {
	d, err := Rank(deleter)
	if err != nil {
		return false
	}
	c, err := Rank(creator)
	if err != nil {
		return false
	}
	return d >= c
}
