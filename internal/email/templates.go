package email

import (
	"fmt"
	"html"
	"maps"
	"slices"
	"strings"

	"kisansense/internal/config"
	"kisansense/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, 'Noto Sans', sans-serif; line-height: 1.6; color: #1f2937; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #15803d; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 22px; }
        .content { background: #f7fee7; padding: 20px; border: 1px solid #d9f99d; }
        .footer { background: #f3f4f6; padding: 12px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; }
        .button { display: inline-block; background: #15803d; color: white; padding: 10px 22px; text-decoration: none; border-radius: 6px; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; }
        .quote { white-space: pre-wrap; border-left: 3px solid #84cc16; padding-left: 10px; }
    </style>
</head>
<body>
    <div class="header"><h1>%s</h1></div>
    <div class="content">%s</div>
    <div class="footer">
        <p>Sent by %s &middot; <a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content,
		html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// ContactMessageReceived generates the officer notification for a new
// contact form message.
func (t *Templates) ContactMessageReceived(msg *models.ContactMessage) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Message from %s (%s)", t.cfg.SiteTitle, msg.Name, orDash(msg.Village))

	content := fmt.Sprintf(`
        <p>A farmer has sent a message through the contact form.</p>
        <div class="info-box">
            <p><span class="label">Name:</span> %s</p>
            <p><span class="label">Village:</span> %s</p>
            <p><span class="label">Phone:</span> %s</p>
            <p><span class="label">Language:</span> %s</p>
            <p class="quote">%s</p>
        </div>
        <p style="text-align: center;"><a href="%s/admin/messages" class="button">Open the console</a></p>
    `,
		html.EscapeString(msg.Name),
		html.EscapeString(orDash(msg.Village)),
		html.EscapeString(orDash(msg.Phone)),
		html.EscapeString(msg.Language),
		html.EscapeString(msg.Message),
		t.cfg.BaseURL,
	)
	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Message from a farmer

Name: %s
Village: %s
Phone: %s
Language: %s

%s

Reply from: %s/admin/messages
--
%s`,
		msg.Name, orDash(msg.Village), orDash(msg.Phone), msg.Language,
		msg.Message, t.cfg.BaseURL, t.cfg.SiteTitle,
	)
	return subject, htmlBody, textBody
}

// PrefetchFailed lists cities whose weather could not be refreshed.
func (t *Templates) PrefetchFailed(failures map[string]string) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Weather refresh failed for %d %s", t.cfg.SiteTitle, len(failures), plural(len(failures), "city", "cities"))

	cities := slices.Sorted(maps.Keys(failures))

	var rows, lines strings.Builder
	for _, city := range cities {
		fmt.Fprintf(&rows, "<li><span class=\"label\">%s</span>: %s</li>\n",
			html.EscapeString(city), html.EscapeString(failures[city]))
		fmt.Fprintf(&lines, "- %s: %s\n", city, failures[city])
	}

	content := fmt.Sprintf(`
        <p>The weather prefetcher could not refresh these cities. Farmers will see stale or missing weather until it recovers.</p>
        <div class="info-box"><ul>%s</ul></div>
    `, rows.String())
	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf("Weather refresh failed\n\n%s\n--\n%s", lines.String(), t.cfg.SiteTitle)
	return subject, htmlBody, textBody
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
