package auth

import "net/http"

// LoginRequest represents the body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FromForm llena el request desde un form HTML clásico.
func (r *LoginRequest) FromForm(req *http.Request) {
	r.Email = req.PostFormValue("email")
	r.Password = req.PostFormValue("password")
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	ExpiresAt   int64  `json:"expires_at"`
}
