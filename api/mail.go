package main

import (
	"bytes"
	"html/template"
	"log"

	"github.com/go-mail/mail/v2"
)

type mailer struct {
	dialer *mail.Dialer
	sender string
}

func newMailer(host string, port int, username string, password string, sender string) *mailer {
	dialer := mail.NewDialer(host, port, username, password)
	return &mailer{
		dialer: dialer,
		sender: sender,
	}
}

func (m *mailer) send(to string, tmpl *template.Template, data any) error {
	var subject bytes.Buffer
	err := tmpl.ExecuteTemplate(&subject, "subject", data)
	if err != nil {
		return err
	}
	var plainBody bytes.Buffer
	err = tmpl.ExecuteTemplate(&plainBody, "plainBody", data)
	if err != nil {
		return err
	}
	var htmlBody bytes.Buffer
	err = tmpl.ExecuteTemplate(&htmlBody, "htmlBody", data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	for i := 0; i < 3; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			break
		}
	}
	return err
}

var passwordResetTmpl = template.Must(template.New("passwordReset").Parse(`
{{define "subject"}}Your password was reset{{end}}
{{define "plainBody"}}Hi {{.Username}},

An administrator has reset the password for your account. If you did not
request this, contact your administrator immediately.
{{end}}
{{define "htmlBody"}}<p>Hi {{.Username}},</p>
<p>An administrator has reset the password for your account. If you did not
request this, contact your administrator immediately.</p>
{{end}}`))

// notifyPasswordReset is best effort: delivery failures are logged, never
// surfaced to the caller.
func (app *application) notifyPasswordReset(u *user) {
	if app.mailer == nil {
		return
	}
	email, username := u.Email, u.Username
	go func() {
		err := app.mailer.send(email, passwordResetTmpl, map[string]string{"Username": username})
		if err != nil {
			log.Printf("[WARNING] sending password reset notice to %s: %v", email, err)
		}
	}()
}
