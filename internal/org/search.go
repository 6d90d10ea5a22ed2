package org

import (
	"strings"

	"github.com/fleety/fleetyctl/internal/api"
)

// Search filters a roster by a case-insensitive substring match over
// username and email. An empty term returns the roster unchanged; matching
// is a stable filter, so the roster's ordering is preserved.
func Search(roster []api.Member, term string) []api.Member {
	if term == "" {
		return roster
	}

	needle := strings.ToLower(term)
	var out []api.Member
	for _, m := range roster {
		if strings.Contains(strings.ToLower(m.User.Username), needle) ||
			strings.Contains(strings.ToLower(m.User.Email), needle) {
			out = append(out, m)
		}
	}
	return out
}
