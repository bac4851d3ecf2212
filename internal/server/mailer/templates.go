package mailer

import (
	"bytes"
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	ResetPasswordSubject = "Password Reset Request"
	WelcomeSubject       = "Welcome to Konasal Insurance"
)

// RenderResetPassword renders the reset email for name with the given link.
func RenderResetPassword(name, link string, validity time.Duration) (string, error) {
	return render("reset_password.html", map[string]any{
		"Name":    name,
		"Link":    link,
		"Minutes": int(validity.Minutes()),
	})
}

func RenderWelcome(name string) (string, error) {
	return render("welcome.html", map[string]any{"Name": name})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
