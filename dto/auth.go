package dto

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"max=80"`
}

// ProfileUpdate is the body of PUT /auth/profile.
type ProfileUpdate struct {
	Name string `json:"name" validate:"required,max=80"`
}

// User is the caller identity as returned by the auth endpoints.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsGuest bool   `json:"is_guest,omitempty"`
}

// AuthResponse is returned by login, test-login and register.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// ErrorResponse is the uniform error body. Detail mirrors the shape many Python backends emit.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
