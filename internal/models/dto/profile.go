package dto

// RoleResult is the response body shared by role selection and profile
// completion. Role carries the display (short) vocabulary; PersistedRole
// the storage vocabulary. VolunteerSynced is false when the metadata
// flag write was skipped or failed soft.
type RoleResult struct {
	Role            string `json:"role"`
	PersistedRole   string `json:"persisted_role"`
	Volunteer       bool   `json:"volunteer"`
	VolunteerSynced bool   `json:"volunteer_synced"`
	Completed       bool   `json:"completed"`
}

// ProfileView is returned by the fetch-for-display endpoint.
type ProfileView struct {
	RoleResult
	Attributes map[string]any `json:"attributes"`
}
