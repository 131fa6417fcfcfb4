package dto

// ProjectRequest is the admin project form. TechStack is a comma separated list.
type ProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Year        string `json:"year"`
	Image       string `json:"image"`
	TechStack   string `json:"tech_stack"`
	GitHubURL   string `json:"github_url"`
	LiveURL     string `json:"live_url"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type DashboardResponse struct {
	Projects int64 `json:"projects"`
	Messages int64 `json:"messages"`
}
