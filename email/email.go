package email

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/wishstox/wishstox-backend/models"
	"github.com/wishstox/wishstox-backend/util"
)

type suppressionStore interface {
	AddSuppressedEmail(email string, reason string, timestamp string) error
	IsSuppressedEmail(string) (bool, error)
}

// Config stores variables needed to submit emails for sending, as well as
// to generate the templates.
type Config struct {
	auth               smtp.Auth
	username           string
	password           string
	submissionHostname string
	port               string
	sender             string
	contactInbox       string // Where contact-form notifications go.
	database           suppressionStore
}

// MakeConfigFromEnv initializes our email config object with
// environment variables.
func MakeConfigFromEnv(database suppressionStore) (Config, error) {
	// create config
	varErrs := util.Errors{}
	c := Config{
		username:           util.RequireEnv("SMTP_USERNAME", &varErrs),
		password:           util.RequireEnv("SMTP_PASSWORD", &varErrs),
		submissionHostname: util.RequireEnv("SMTP_ENDPOINT", &varErrs),
		port:               util.RequireEnv("SMTP_PORT", &varErrs),
		sender:             util.RequireEnv("SMTP_FROM_ADDRESS", &varErrs),
		contactInbox:       util.RequireEnv("CONTACT_INBOX", &varErrs),
		database:           database,
	}
	if len(varErrs) > 0 {
		return c, varErrs
	}
	log.Printf("Establishing auth connection with SMTP server %s", c.submissionHostname)
	// create auth
	client, err := smtp.Dial(fmt.Sprintf("%s:%s", c.submissionHostname, c.port))
	if err != nil {
		return c, err
	}
	defer client.Close()
	err = client.StartTLS(&tls.Config{ServerName: c.submissionHostname})
	if err != nil {
		return c, fmt.Errorf("SMTP server doesn't support STARTTLS")
	}
	ok, auths := client.Extension("AUTH")
	if !ok {
		return c, fmt.Errorf("remote SMTP server doesn't support any authentication mechanisms")
	}
	if strings.Contains(auths, "PLAIN") {
		c.auth = smtp.PlainAuth("", c.username, c.password, c.submissionHostname)
	} else if strings.Contains(auths, "CRAM-MD5") {
		c.auth = smtp.CRAMMD5Auth(c.username, c.password)
	} else {
		return c, fmt.Errorf("SMTP server doesn't support PLAIN or CRAM-MD5 authentication")
	}
	return c, nil
}

// SendWelcome sends the thank-you-for-joining email to a new (or returning)
// waiting-list registrant. name may be empty.
func (c Config) SendWelcome(name string, address string) error {
	return c.sendEmail(welcomeSubject, welcomeBody(name), address)
}

// SendContactNotice forwards a contact-form submission to the site inbox.
func (c Config) SendContactNotice(msg *models.ContactMessage) error {
	return c.sendEmail(contactSubject, contactBody(msg), c.contactInbox)
}

func (c Config) sendEmail(subject string, body string, address string) error {
	suppressed, err := c.database.IsSuppressedEmail(address)
	if err != nil {
		return err
	}
	if suppressed {
		return fmt.Errorf("address %s is suppressed", address)
	}
	message := fmt.Sprintf("From: %s\nTo: %s\nSubject: %s\nMIME-Version: 1.0\nContent-Type: text/html; charset=utf-8\n\n%s",
		c.sender, address, subject, body)
	if c.submissionHostname == "" {
		log.Println("Warning: email host not configured, not sending email")
		log.Println(message)
		return nil
	}
	return smtp.SendMail(fmt.Sprintf("%s:%s", c.submissionHostname, c.port),
		c.auth,
		c.sender, []string{address}, []byte(message))
}

// Recipients lists the email addresses that have triggered a bounce or complaint.
type Recipients []struct {
	EmailAddress string `json:"emailAddress"`
}

// SuppressionRequest represents a submission for a particular email address to
// be added to the suppression list.
type SuppressionRequest struct {
	Reason     string
	Timestamp  string
	Recipients Recipients
	Raw        string
}

// UnmarshalJSON wrangles the JSON posted by the notification service into
// something easier to access and generalized across notification types.
func (r *SuppressionRequest) UnmarshalJSON(b []byte) error {
	// We need to start by unmarshalling Message into a string because the field contains stringified JSON.
	// See email_test.go for examples.
	var wrapper struct {
		Message   string
		Timestamp string
	}
	if err := json.Unmarshal(b, &wrapper); err != nil {
		return fmt.Errorf("failed to load notification wrapper: %v", err)
	}

	type Complaint struct {
		*Recipients `json:"complainedRecipients"`
	}

	type Bounce struct {
		*Recipients `json:"bouncedRecipients"`
	}

	// We'll unmarshall the list of bounced or complained emails into
	// &recipients.  Only one of Complaint or Bounce will contain data, so we can
	// reuse &recipients to capture whichever field holds the list.
	var recipients Recipients
	msg := struct {
		NotificationType string `json:"notificationType"`
		Complaint        `json:"complaint"`
		Bounce           `json:"bounce"`
	}{
		Complaint: Complaint{Recipients: &recipients},
		Bounce:    Bounce{Recipients: &recipients},
	}

	if err := json.Unmarshal([]byte(wrapper.Message), &msg); err != nil {
		return fmt.Errorf("failed to load notification message: %v", err)
	}

	*r = SuppressionRequest{
		Raw:        wrapper.Message,
		Timestamp:  wrapper.Timestamp,
		Reason:     msg.NotificationType,
		Recipients: recipients,
	}
	return nil
}
