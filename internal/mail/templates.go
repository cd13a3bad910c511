package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const ResetPasswordSubject = "Password Reset Request"

var resetPasswordTemplate = template.Must(template.New("reset").Parse(`
<h2>Hello {{.Name}}</h2>
<p>Please click the url below to reset your password</p>
<p>This reset link is valid for only {{.ValidFor}}.</p>

<a href="{{.ResetURL}}" clicktracking=off>{{.ResetURL}}</a>

<p>Regards...</p>
`))

type ResetPasswordData struct {
	Name     string
	ResetURL string
	ValidFor time.Duration
}

func RenderResetPassword(data ResetPasswordData) (string, error) {
	var buf bytes.Buffer
	if err := resetPasswordTemplate.Execute(&buf, struct {
		Name     string
		ResetURL string
		ValidFor string
	}{
		Name:     data.Name,
		ResetURL: data.ResetURL,
		ValidFor: fmt.Sprintf("%d minutes", int(data.ValidFor.Minutes())),
	}); err != nil {
		return "", fmt.Errorf("render reset email: %w", err)
	}
	return buf.String(), nil
}
