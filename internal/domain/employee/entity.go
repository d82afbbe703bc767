package employee

import "time"

type Employee struct {
	ID         string
	Name       string
	Email      string
	Department string
	Role       string
	AvatarURL  string
	Timezone   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName falls back to the email, then to a generic label.
func (e Employee) DisplayName() string {
	switch {
	case e.Name != "":
		return e.Name
	case e.Email != "":
		return e.Email
	default:
		return "User " + e.ID
	}
}
