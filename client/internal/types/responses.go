package types

// ------------------------------
// Response Types
// ------------------------------

// LoginResponse is returned by POST /profile/login.
type LoginResponse struct {
	Profile SessionProfile `json:"profile"`
	Token   string         `json:"token"`
}

// ListProfilesResponse is one page of the directory.
type ListProfilesResponse struct {
	Docs       []ProfileSummary `json:"docs"`
	TotalDocs  int              `json:"totalDocs"`
	TotalPages int              `json:"totalPages"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// DeleteProfileResponse is returned by DELETE /profile/:id.
type DeleteProfileResponse struct {
	Message string         `json:"message"`
	Profile DeletedProfile `json:"profile"`
}
