package email

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mhale/smtpd"

	"github.com/wishstox/wishstox-backend/models"
)

type mockSuppressionStore struct {
	suppressed map[string]bool
}

func (s *mockSuppressionStore) AddSuppressedEmail(email string, reason string, timestamp string) error {
	s.suppressed[email] = true
	return nil
}

func (s *mockSuppressionStore) IsSuppressedEmail(email string) (bool, error) {
	return s.suppressed[email], nil
}

func newMockStore() *mockSuppressionStore {
	return &mockSuppressionStore{
		suppressed: make(map[string]bool),
	}
}

func TestWelcomeBodyGreeting(t *testing.T) {
	content := welcomeBody("Ann")
	if !strings.Contains(content, "Hi Ann,") {
		t.Errorf("greeting should include the name, got %s", content)
	}
	content = welcomeBody("")
	if !strings.Contains(content, "Hi,") {
		t.Errorf("greeting without a name should be plain, got %s", content)
	}
	content = welcomeBody("<script>")
	if strings.Contains(content, "<script>") {
		t.Errorf("name should be escaped, got %s", content)
	}
}

func TestContactBody(t *testing.T) {
	content := contactBody(&models.ContactMessage{
		Name: "Ann", Email: "ann@example.com", Message: "When do you launch?",
	})
	for _, want := range []string{"Ann", "ann@example.com", "When do you launch?"} {
		if !strings.Contains(content, want) {
			t.Errorf("contact notice should contain %q, got %s", want, content)
		}
	}
}

func TestRequireEnvConfig(t *testing.T) {
	requiredVars := map[string]string{
		"SMTP_USERNAME":     "",
		"SMTP_PASSWORD":     "",
		"SMTP_ENDPOINT":     "",
		"SMTP_PORT":         "",
		"SMTP_FROM_ADDRESS": "",
		"CONTACT_INBOX":     ""}
	for varName := range requiredVars {
		requiredVars[varName] = os.Getenv(varName)
		os.Setenv(varName, "")
	}
	_, err := MakeConfigFromEnv(nil)
	if err == nil {
		t.Errorf("should have received multiple error from unset env vars")
	}
	for varName, varValue := range requiredVars {
		os.Setenv(varName, varValue)
	}
}

func TestSendEmailToSuppressedAddressFails(t *testing.T) {
	mockStore := newMockStore()
	err := mockStore.AddSuppressedEmail("fail@example.com", "bounce", "2017-07-21T18:47:13.498Z")
	if err != nil {
		t.Errorf("AddSuppressedEmail failed: %v\n", err)
	}
	c := &Config{database: mockStore}
	err = c.sendEmail("Subject", "Body", "fail@example.com")
	if err == nil || !strings.Contains(err.Error(), "suppressed") {
		t.Error("attempting to send mail to suppressed address should fail")
	}
}

// smtpListenAndServe creates a test smtp server to deliver to. We use this
// rather than smtpd.ListenAndServe so that we can use net.Listen to assign a
// random available port.
func smtpListenAndServe(t *testing.T, received chan<- []byte) net.Listener {
	var once sync.Once
	srv := &smtpd.Server{
		Handler: func(_ net.Addr, _ string, _ []string, data []byte) {
			once.Do(func() { received <- data })
		},
		Hostname: "example.com",
	}

	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil {
			if strings.Contains(err.Error(), "closed") {
				return
			}
			t.Error(err)
		}
	}()

	return ln
}

func TestSendWelcomeDelivers(t *testing.T) {
	received := make(chan []byte, 1)
	ln := smtpListenAndServe(t, received)
	defer ln.Close()
	host, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	c := &Config{
		submissionHostname: host,
		port:               port,
		sender:             "no-reply@wishstox.in",
		database:           newMockStore(),
	}
	if err := c.SendWelcome("Ann", "ann@example.com"); err != nil {
		t.Fatalf("SendWelcome failed: %v", err)
	}
	select {
	case data := <-received:
		message := string(data)
		if !strings.Contains(message, welcomeSubject) {
			t.Errorf("delivered message missing subject: %s", message)
		}
		if !strings.Contains(message, "Hi Ann,") {
			t.Errorf("delivered message missing greeting: %s", message)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was never delivered")
	}
}

func TestUnmarshalSuppressionRequest(t *testing.T) {
	message := `{"notificationType":"Bounce","bounce":{"bouncedRecipients":[{"emailAddress":"bounce@example.com"}]}}`
	wrapper := struct {
		Message   string
		Timestamp string
	}{
		Message:   message,
		Timestamp: "2017-07-21T18:47:13.498Z",
	}
	payload, err := json.Marshal(wrapper)
	if err != nil {
		t.Fatal(err)
	}
	request := &SuppressionRequest{}
	if err := json.Unmarshal(payload, request); err != nil {
		t.Fatalf("failed to unmarshal notification: %v", err)
	}
	if request.Reason != "Bounce" {
		t.Errorf("reason = %q, want Bounce", request.Reason)
	}
	if len(request.Recipients) != 1 || request.Recipients[0].EmailAddress != "bounce@example.com" {
		t.Errorf("unexpected recipients: %v", request.Recipients)
	}
	if request.Timestamp != "2017-07-21T18:47:13.498Z" {
		t.Errorf("unexpected timestamp: %s", request.Timestamp)
	}
}
