package user

import (
	"time"

	"github.com/wedflix/command-center/internal/access"
	"github.com/wedflix/command-center/internal/docstore"
)

// ProfilesCollection holds one document per authenticated identity,
// keyed by the provider uid.
const ProfilesCollection = "command_center_users"

// Profile is the canonical in-memory shape of a user record. Older
// documents carried a single "type" field instead of a role set; that
// shape is normalized here, at the data-access boundary, and nowhere
// else.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	UID       string    `json:"uid"`
	Tenant    string    `json:"tenant,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Roles     []string  `json:"roles"`
}

// RoleDisplay renders the role set the way the management views label
// it.
func (p Profile) RoleDisplay() string {
	if len(p.Roles) == 0 {
		return "No Roles"
	}
	out := ""
	for i, r := range p.Roles {
		if i > 0 {
			out += ", "
		}
		out += access.Role(r).DisplayName()
	}
	return out
}

// HasRole reports whether the profile holds the given role.
func (p Profile) HasRole(role access.Role) bool {
	for _, r := range p.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

func profileFromDocument(d docstore.Document) Profile {
	roles := d.StringSlice("roles")
	if roles == nil {
		// Legacy records carry a single "type" value.
		if legacy := d.String("type"); legacy != "" {
			roles = []string{legacy}
		} else {
			roles = []string{}
		}
	}
	return Profile{
		ID:        d.ID,
		Email:     d.String("email"),
		UID:       d.String("uid"),
		Tenant:    d.String("tenant"),
		CreatedAt: d.Time("createdAt"),
		Roles:     roles,
	}
}
