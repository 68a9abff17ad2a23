package auth

import "encoding/json"

const (
	loginRequiredMessage    = "Email and password are required."
	registerRequiredMessage = "All fields are required."
	loginFailedMessage      = "Login failed. Please check your credentials."
	registerFailedMessage   = "Registration failed. Please try again."
)

type Credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type Registration struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginResponse is the reply of the auth backend. The user is kept as the
// backend describes it.
type LoginResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

type Session struct {
	LoggedIn bool            `json:"loggedIn"`
	User     json.RawMessage `json:"user,omitempty"`
}
