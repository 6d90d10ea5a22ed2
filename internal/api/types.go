package api

// User represents a platform user identity
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
	Role         string `json:"role,omitempty"`
}

// Organisation represents an organisation as seen by its members.
// Read-only on the client; sourced from membership queries.
type Organisation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	MemberCount int    `json:"member_count"`
}

// OrgMembership links the current user to one organisation.
// The admin flag lives here, not on the user: the same user can be admin of
// one organisation and a plain member of another.
type OrgMembership struct {
	ID           string       `json:"id"`
	IsOrgAdmin   bool         `json:"is_org_admin"`
	Organisation Organisation `json:"organisation"`
}

// RosterUser is the identity subset carried in a roster entry
type RosterUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Member is one entry in an organisation's roster
type Member struct {
	ID         string     `json:"id"`
	User       RosterUser `json:"user"`
	IsOrgAdmin bool       `json:"is_org_admin"`
}
