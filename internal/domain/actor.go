package domain

// Role represents an actor's capability class.
type Role string

const (
	RoleAuthor     Role = "author"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ValidRoles contains all roles known to the pipeline. Any other role value
// is treated as having no access at all.
var ValidRoles = []Role{RoleAuthor, RoleEditor, RoleAdmin, RoleSuperAdmin}

// IsValid checks if a role is known.
func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}

// Actor identifies who is invoking an operation. It is threaded explicitly
// through every call; the core never reads an ambient request user.
type Actor struct {
	ID     string `json:"id"`
	Role   Role   `json:"role"`
	Rubric string `json:"rubric,omitempty"`
}

// Owns reports whether the actor is the owning author of the article.
func (ac Actor) Owns(a *Article) bool {
	return ac.ID == a.AuthorID
}
