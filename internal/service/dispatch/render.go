package dispatch

import (
	"crypto/rand"
	"strings"

	"github.com/osteele/liquid"
)

// Personalize substitutes the per-recipient placeholders into text. Unknown
// placeholders are left untouched.
func Personalize(text string, c Candidate) string {
	return strings.NewReplacer(
		"{first_name}", c.FirstName,
		"{last_name}", c.LastName,
		"{role}", c.Role,
	).Replace(text)
}

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ConfirmationCode returns a fresh "CONF-" code with 6 random base-36
// uppercase characters.
func ConfirmationCode() string {
	buf := make([]byte, 6)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return "CONF-" + string(buf)
}

// Theme colors for the light and dark email variants.
const (
	lightBackground = "#f5f1e8"
	lightText       = "#1f2933"
	darkBackground  = "#1f2933"
	darkText        = "#f5f1e8"
)

const emailTemplate = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:{{ background }};">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr>
      <td align="center" style="padding:32px 16px;">
        <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:{{ background }};color:{{ text_color }};font-family:Georgia,serif;">
          {% if logo_url != "" %}
          <tr>
            <td align="center" style="padding-bottom:24px;">
              <img src="{{ logo_url }}" alt="" width="160" style="display:block;">
            </td>
          </tr>
          {% endif %}
          <tr>
            <td style="font-size:16px;line-height:1.6;">{{ body }}</td>
          </tr>
          {% if confirmation_code != "" %}
          <tr>
            <td align="center" style="padding:24px 0;">
              <span style="font-size:20px;letter-spacing:2px;font-weight:bold;">{{ confirmation_code }}</span>
            </td>
          </tr>
          {% endif %}
          <tr>
            <td style="padding-top:32px;font-size:13px;line-height:1.5;opacity:0.8;">{{ footer }}</td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

var templateEngine = liquid.NewEngine()

// RenderHTML wraps the personalized body and footer in the campaign email
// layout. color selects the light (default) or dark variant.
func RenderHTML(body, footer, color, logoURL, confirmationCode string) (string, error) {
	background, textColor := lightBackground, lightText
	if color == "dark" {
		background, textColor = darkBackground, darkText
	}
	return templateEngine.ParseAndRenderString(emailTemplate, liquid.Bindings{
		"background":        background,
		"text_color":        textColor,
		"logo_url":          logoURL,
		"confirmation_code": confirmationCode,
		"body":              nl2br(body),
		"footer":            nl2br(footer),
	})
}

func nl2br(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>\n")
}
