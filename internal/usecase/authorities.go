package usecase

import (
	"slices"

	"giftstore/internal/domain"
)

const rolePrefix = "ROLE_"

// RoleAuthority is the coarse marker granted to every holder of a role.
func RoleAuthority(role domain.RoleType) string {
	return rolePrefix + string(role)
}

// ResolveAuthorities returns the role marker followed by the role's
// fine-grained authorities in sorted order. It is recomputed per request.
func ResolveAuthorities(role domain.Role) []string {
	out := make([]string, 0, len(role.Authorities)+1)
	if role.Permission != "" {
		out = append(out, RoleAuthority(role.Permission))
	}
	fine := make([]string, 0, len(role.Authorities))
	for _, authority := range role.Authorities {
		if authority == "" {
			continue
		}
		fine = append(fine, string(authority))
	}
	slices.Sort(fine)
	fine = slices.Compact(fine)
	return append(out, fine...)
}
