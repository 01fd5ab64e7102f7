package email

import "fmt"

// WelcomeSubject es el asunto del mail de bienvenida.
const WelcomeSubject = "Welcome to TrackShare"

// Welcome arma el cuerpo del mail de bienvenida post-registro.
func Welcome(name string) (html, text string) {
	html = fmt.Sprintf(`<html><body>
<h2>Welcome, %s!</h2>
<p>Your account is ready. Sign in and start sharing your tracks.</p>
</body></html>`, name)
	text = fmt.Sprintf("Welcome, %s!\n\nYour account is ready. Sign in and start sharing your tracks.\n", name)
	return html, text
}
