package schemas

// MeResponse describes the authenticated account.
type MeResponse struct {
	Body struct {
		Username string `json:"username" example:"alice" doc:"Authenticated user"`
	}
}
