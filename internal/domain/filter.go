// Package domain contains the core business entities and value objects.
package domain

// RoleSet is the role vocabulary a provider accepts inside its message list.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Contains reports whether r is accepted.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// FilterHistory returns the turns whose role is in accepted, in their original order.
// The input slice is never modified.
func FilterHistory(history []Turn, accepted RoleSet) Conversation {
	out := make(Conversation, 0, len(history))
	for _, t := range history {
		if accepted.Contains(t.Role) {
			out = append(out, t)
		}
	}
	return out
}
