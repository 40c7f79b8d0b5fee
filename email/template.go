package email

import (
	"fmt"
	"html"

	"github.com/wishstox/wishstox-backend/models"
)

const welcomeSubject = "Thanks for joining the WishStox waiting list!"

const welcomeTemplate = `<p>Hi%s,<br/><br/>Thank you for joining the WishStox waiting list! You'll be among the first to get access when we launch.<br/><br/>Best,<br/>The WishStox Team</p>`

// welcomeBody interpolates the optional display name into the greeting:
// "Hi Ann," when a name was given, plain "Hi," otherwise.
func welcomeBody(name string) string {
	greeting := ""
	if name != "" {
		greeting = " " + html.EscapeString(name)
	}
	return fmt.Sprintf(welcomeTemplate, greeting)
}

const contactSubject = "New contact-form message on wishstox.in"

const contactTemplate = `<p>New message from the contact form:</p>
<p><b>Name:</b> %s<br/>
<b>Email:</b> %s</p>
<p>%s</p>`

func contactBody(msg *models.ContactMessage) string {
	return fmt.Sprintf(contactTemplate,
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
		html.EscapeString(msg.Message))
}
