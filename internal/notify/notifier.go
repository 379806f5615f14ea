// Package notify delivers confirmation and password reset codes to users.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
)

// Notifier delivers one-time codes out of band.
type Notifier interface {
	SendConfirmation(ctx context.Context, name, email, code string) error
	SendPasswordReset(ctx context.Context, name, email, code string) error
}

// Message is a rendered email ready for a transport.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

var (
	confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<p>Hola: {{.Name}}, has creado tu cuenta en CashTrackr, ya esta casi lista</p>
<p>Visita el siguiente enlace:</p>
<a href="{{.Link}}">Confirmar cuenta</a>
<p>e ingresa el código: <b>{{.Code}}</b></p>
`))
	resetTmpl = template.Must(template.New("reset").Parse(`
<p>Hola: {{.Name}}, has solicitado reestablecer tu password</p>
<p>Visita el siguiente enlace:</p>
<a href="{{.Link}}">Reestablecer password</a>
<p>e ingresa el código: <b>{{.Code}}</b></p>
`))
)

type mailData struct {
	Name string
	Code string
	Link string
}

// ConfirmationMessage renders the account confirmation email.
func ConfirmationMessage(frontendURL, name, email, code string) (Message, error) {
	link := strings.TrimRight(frontendURL, "/") + "/auth/confirm-account"
	html, err := render(confirmationTmpl, mailData{Name: name, Code: code, Link: link})
	if err != nil {
		return Message{}, err
	}
	return Message{
		ToName:  name,
		ToEmail: email,
		Subject: "CashTrackr - Confirma tu cuenta",
		Text:    fmt.Sprintf("Hola %s, confirma tu cuenta en %s con el código %s", name, link, code),
		HTML:    html,
	}, nil
}

// PasswordResetMessage renders the password reset email.
func PasswordResetMessage(frontendURL, name, email, code string) (Message, error) {
	link := strings.TrimRight(frontendURL, "/") + "/auth/new-password"
	html, err := render(resetTmpl, mailData{Name: name, Code: code, Link: link})
	if err != nil {
		return Message{}, err
	}
	return Message{
		ToName:  name,
		ToEmail: email,
		Subject: "CashTrackr - Reestablece tu password",
		Text:    fmt.Sprintf("Hola %s, reestablece tu password en %s con el código %s", name, link, code),
		HTML:    html,
	}, nil
}

func render(t *template.Template, data mailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
