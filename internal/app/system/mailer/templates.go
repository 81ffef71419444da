// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// NotificationEmailData holds data for notification email templates.
type NotificationEmailData struct {
	SiteName    string
	ProjectPath string
	// ItemRef is "#12" for issues, "!3" for merge requests, a short SHA for
	// commits and empty for project-wide events.
	ItemRef   string
	ItemTitle string
	ItemURL   string
	// Summary is one line describing what happened, e.g.
	// "alice commented on issue #12".
	Summary string
	// NoteHTML is an already sanitized rendering of the note body.
	NoteHTML template.HTML
	NoteText string
	// Preview is the inbox preview line shown next to the subject.
	Preview string
	// Reason tells the recipient why they got the email.
	Reason         string
	UnsubscribeURL string
}

// BuildNotificationEmail creates a notification email with both HTML and text bodies.
func BuildNotificationEmail(data NotificationEmailData) Email {
	return Email{
		To:             "", // Set by caller
		Subject:        notificationSubject(data),
		TextBody:       buildNotificationText(data),
		HTMLBody:       buildNotificationHTML(data),
		UnsubscribeURL: data.UnsubscribeURL,
	}
}

func notificationSubject(data NotificationEmailData) string {
	if data.ItemRef == "" {
		return fmt.Sprintf("[%s] %s", data.ProjectPath, data.Summary)
	}
	return fmt.Sprintf("[%s] %s (%s)", data.ProjectPath, data.ItemTitle, data.ItemRef)
}

func buildNotificationText(data NotificationEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(data.Summary + "\n\n")
	if data.NoteText != "" {
		for _, line := range strings.Split(data.NoteText, "\n") {
			buf.WriteString("> " + line + "\n")
		}
		buf.WriteString("\n")
	}
	if data.ItemURL != "" {
		buf.WriteString("View it on " + data.SiteName + ":\n")
		buf.WriteString(data.ItemURL + "\n\n")
	}
	buf.WriteString("--\n")
	if data.Reason != "" {
		buf.WriteString(data.Reason + "\n")
	}
	if data.UnsubscribeURL != "" {
		buf.WriteString("Unsubscribe: " + data.UnsubscribeURL + "\n")
	}
	return buf.String()
}

var notificationTmpl = template.Must(template.New("notification").Parse(notificationHTMLTemplate))

func buildNotificationHTML(data NotificationEmailData) string {
	var buf bytes.Buffer
	_ = notificationTmpl.Execute(&buf, data)
	return buf.String()
}

const notificationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.ProjectPath}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  {{if .Preview}}<div style="display: none; max-height: 0; overflow: hidden;">{{.Preview}}</div>{{end}}
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 32px 16px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 600px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 20px 24px; border-bottom: 1px solid #e5e7eb; font-size: 13px; color: #6b7280;">
              {{.ProjectPath}}{{if .ItemRef}} &middot; {{.ItemRef}}{{end}}
            </td>
          </tr>
          <tr>
            <td style="padding: 24px;">
              <p style="margin: 0 0 16px; font-size: 15px; color: #111827;">{{.Summary}}</p>
              {{if .ItemTitle}}<h2 style="margin: 0 0 16px; font-size: 18px; color: #1f2937;">{{.ItemTitle}}</h2>{{end}}
              {{if .NoteHTML}}<div style="border-left: 3px solid #e5e7eb; padding-left: 12px; color: #374151; font-size: 14px; line-height: 1.5;">{{.NoteHTML}}</div>{{end}}
              {{if .ItemURL}}
              <p style="margin: 24px 0 0;">
                <a href="{{.ItemURL}}" style="display: inline-block; padding: 10px 20px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 14px; border-radius: 6px;">View on {{.SiteName}}</a>
              </p>
              {{end}}
            </td>
          </tr>
          <tr>
            <td style="padding: 16px 24px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px; font-size: 12px; color: #9ca3af;">
              {{if .Reason}}{{.Reason}}<br>{{end}}
              {{if .UnsubscribeURL}}<a href="{{.UnsubscribeURL}}" style="color: #6b7280;">Unsubscribe</a> from this thread.{{end}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
