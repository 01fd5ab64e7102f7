package auth

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestRegisterRequest_JSON(t *testing.T) {
	t.Parallel()
	var r RegisterRequest
	body := `{"name":"Ana","email":"ana@example.com","password":"pw","confirmPassword":"pw"}`
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatal(err)
	}
	if r.ConfirmPassword != "pw" {
		t.Fatalf("confirm = %q", r.ConfirmPassword)
	}
}

func TestRegisterRequest_JSONLegacyConfirmField(t *testing.T) {
	t.Parallel()
	var r RegisterRequest
	body := `{"name":"Ana","email":"ana@example.com","password":"pw","confirm_password":"pw"}`
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatal(err)
	}
	if r.ConfirmPassword != "pw" {
		t.Fatalf("legacy confirm field ignored: %q", r.ConfirmPassword)
	}
}

func TestRegisterRequest_FromForm(t *testing.T) {
	t.Parallel()
	for _, field := range []string{"confirmPassword", "confirm_password"} {
		form := url.Values{
			"name": {"Ana"}, "email": {"ana@example.com"},
			"password": {"pw"}, field: {"pw"},
		}
		req := httptest.NewRequest("POST", "/register", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var r RegisterRequest
		r.FromForm(req)
		if r.ConfirmPassword != "pw" {
			t.Fatalf("field %s: confirm = %q", field, r.ConfirmPassword)
		}
	}
}
