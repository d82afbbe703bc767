package employee

type EmployeeResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	Role       string `json:"role,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		Name:       e.DisplayName(),
		Email:      e.Email,
		Department: e.Department,
		Role:       e.Role,
		AvatarURL:  e.AvatarURL,
		Timezone:   e.Timezone,
	}
}
