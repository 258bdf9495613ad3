package user

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	HitPoints *int   `json:"hitPoints"`
}

type CreateSessionRequest struct {
	Username string `json:"username"`
}

type SessionResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
