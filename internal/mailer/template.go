package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

type content struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]content{
	KindApplication: {
		subject: "Job Application Confirmation",
		body: template.Must(template.New("application").Parse(
			`<p>You have successfully applied for the job: <b>{{.JobTitle}}</b>.</p>`,
		)),
	},
	KindShortlist: {
		subject: "You have been shortlisted!",
		body: template.Must(template.New("shortlist").Parse(
			`<p>🎉 Congratulations!</p>
<p>You have been <b>shortlisted</b> for the job: <b>{{.JobTitle}}</b>.</p>`,
		)),
	},
}

// Render returns the subject and HTML body for msg
func Render(msg Message) (string, string, error) {
	c, ok := templates[msg.Kind]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown kind %q", ErrInvalidMessage, msg.Kind)
	}

	var buf bytes.Buffer
	if err := c.body.Execute(&buf, msg); err != nil {
		return "", "", fmt.Errorf("failed to render %s email: %w", msg.Kind, err)
	}

	return c.subject, buf.String(), nil
}
