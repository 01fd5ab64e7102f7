package auth

import (
	"encoding/json"
	"net/http"
)

// RegisterRequest represents the body for POST /register.
// Acepta form-encoded (páginas) y JSON (clientes de API).
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// UnmarshalJSON acepta también confirm_password como nombre del campo
// de confirmación, que usaron los primeros clientes del servicio.
func (r *RegisterRequest) UnmarshalJSON(b []byte) error {
	type plain RegisterRequest
	aux := struct {
		*plain
		LegacyConfirm string `json:"confirm_password"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if r.ConfirmPassword == "" {
		r.ConfirmPassword = aux.LegacyConfirm
	}
	return nil
}

// FromForm llena el request desde un form HTML clásico. Mismo fallback
// de nombre que en JSON.
func (r *RegisterRequest) FromForm(req *http.Request) {
	r.Name = req.PostFormValue("name")
	r.Email = req.PostFormValue("email")
	r.Password = req.PostFormValue("password")
	r.ConfirmPassword = req.PostFormValue("confirmPassword")
	if r.ConfirmPassword == "" {
		r.ConfirmPassword = req.PostFormValue("confirm_password")
	}
}

// RegisterResponse represents the response for a successful registration.
type RegisterResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
