package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	raven "github.com/getsentry/raven-go"
	"golang.org/x/net/idna"

	"github.com/wishstox/wishstox-backend/models"
	"github.com/wishstox/wishstox-backend/util"
)

// submission is the body of a waiting-list POST.
type submission struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type submitResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Spot    int  `json:"spot"`
}

type countResponse struct {
	Count int `json:"count"`
}

// WaitingList routes /api/waiting-list.
//   POST /api/waiting-list
//        {name?: string, email: string}
//        Registers the email and responds {success: true, count, spot}.
//   GET  /api/waiting-list
//        Responds {count} with the current number of registrants.
func (api API) WaitingList(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		api.submit(w, r)
	case http.MethodGet:
		api.count(w, r)
	default:
		writeError(w, r, http.StatusMethodNotAllowed,
			"/api/waiting-list only accepts POST and GET requests")
	}
}

// submit registers an email on the waiting list and reports its spot.
//
// The insert and the ordered read-back that computes the spot are two separate
// store round trips with no transaction around them: near-simultaneous
// submissions of the same email race on the store's unique index, and the spot
// each caller sees is a best-effort snapshot. The unique index guarantees the
// list itself never holds two rows for one email.
func (api API) submit(w http.ResponseWriter, r *http.Request) {
	var sub submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, r, http.StatusInternalServerError, "Server error.")
		return
	}
	address, err := normalizeEmail(sub.Email)
	if err != nil || !util.ValidEmail(address) {
		writeError(w, r, http.StatusBadRequest, "Invalid email.")
		return
	}
	// A duplicate email is dropped inside the store, so a resubmission falls
	// through to the rank lookup and reports the existing spot.
	if err := api.Database.AddRegistrant(models.Registrant{Name: sub.Name, Email: address}); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	registrants, err := api.Database.GetRegistrants()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	spot := models.SpotOf(registrants, address)
	// The welcome email is best-effort: the registrant already has a spot, so
	// a send failure is reported to Sentry rather than to the submitter.
	if err := api.Emailer.SendWelcome(sub.Name, address); err != nil {
		log.Printf("failed to send welcome email to %s: %v", address, err)
		raven.CaptureError(err, nil)
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Success: true,
		Count:   len(registrants),
		Spot:    spot,
	})
}

// count reports the current waiting-list size.
func (api API) count(w http.ResponseWriter, r *http.Request) {
	count, err := api.Database.CountRegistrants()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

// normalizeEmail lowercases the address and converts an internationalized
// domain to its ASCII form, so resubmissions of the same mailbox always rank
// as one registrant.
func normalizeEmail(address string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	at := strings.LastIndex(address, "@")
	if at < 0 {
		// Let the shape check reject it.
		return address, nil
	}
	domain, err := idna.ToASCII(address[at+1:])
	if err != nil {
		return "", fmt.Errorf("could not convert domain %s to ASCII (%s)", address[at+1:], err)
	}
	return address[:at+1] + domain, nil
}
