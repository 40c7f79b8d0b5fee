package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	raven "github.com/getsentry/raven-go"

	"github.com/wishstox/wishstox-backend/models"
	"github.com/wishstox/wishstox-backend/util"
)

type contactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type contactResponse struct {
	Success bool `json:"success"`
}

// Contact is the handler for /api/contact.
//   POST /api/contact
//        {name?: string, email: string, message: string}
//        Stores the message and notifies the site inbox.
func (api API) Contact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed,
			"/api/contact only accepts POST requests")
		return
	}
	var sub contactSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, r, http.StatusInternalServerError, "Server error.")
		return
	}
	address, err := normalizeEmail(sub.Email)
	if err != nil || !util.ValidEmail(address) {
		writeError(w, r, http.StatusBadRequest, "Invalid email.")
		return
	}
	if strings.TrimSpace(sub.Message) == "" {
		writeError(w, r, http.StatusBadRequest, "Message is required.")
		return
	}
	msg := models.ContactMessage{Name: sub.Name, Email: address, Message: sub.Message}
	if err := api.Database.AddContactMessage(msg); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	// Same policy as the welcome email: the message is stored, a failed
	// notification shouldn't bounce the submitter.
	if err := api.Emailer.SendContactNotice(&msg); err != nil {
		log.Printf("failed to forward contact message from %s: %v", address, err)
		raven.CaptureError(err, nil)
	}
	writeJSON(w, http.StatusOK, contactResponse{Success: true})
}
