package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	raven "github.com/getsentry/raven-go"

	"github.com/wishstox/wishstox-backend/db"
	"github.com/wishstox/wishstox-backend/models"
)

////////////////////////////////
//  *****   REST API   *****  //
////////////////////////////////

// API is the HTTP API that this service provides.
//
// The waiting-list and contact endpoints reproduce the JSON shapes the site's
// frontend already consumes ({success, count, spot} / {error}); the remaining
// endpoints respond with a response JSON, with fields:
// {
//     status_code // HTTP status code of request
//     message // Any error message accompanying the status_code. If 200, empty.
//     response // Response data (as JSON) from this request.
// }
type API struct {
	Database db.Database
	Emailer  EmailSender
}

// EmailSender interface wraps a back-end that can send e-mails.
type EmailSender interface {
	// SendWelcome sends the waiting-list confirmation e-mail to a
	// registrant. name may be empty.
	SendWelcome(name string, address string) error
	// SendContactNotice forwards a contact-form message to the site inbox.
	SendContactNotice(*models.ContactMessage) error
}

type response struct {
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Response   interface{} `json:"response"`
}

type apiHandler func(r *http.Request) response

func (api *API) wrapper(handler apiHandler) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		response := handler(r)
		if response.StatusCode == http.StatusInternalServerError {
			packet := raven.NewPacket(response.Message, raven.NewHttp(r))
			raven.Capture(packet, nil)
		}
		writeJSON(w, response.StatusCode, response)
	}
}

func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Header().Set("Content-Type", "application/json")
}

// RegisterHandlers binds API functions to the given http server,
// and returns the resulting handler.
func (api *API) RegisterHandlers(mux *http.ServeMux) http.Handler {
	mux.Handle("/api/waiting-list",
		throttleHandler(time.Hour, 60, http.HandlerFunc(api.WaitingList)))
	mux.Handle("/api/contact",
		throttleHandler(time.Hour, 20, http.HandlerFunc(api.Contact)))
	mux.HandleFunc("/api/stats", api.wrapper(api.stats))
	mux.HandleFunc("/api/ping", pingHandler)
	mux.HandleFunc("/webhooks/email-events", HandleEmailNotification(api.Database))
	return middleware(mux)
}

// Writes `v` as a JSON object to http.ResponseWriter `w`. If an error
// occurs, writes `http.StatusInternalServerError` to `w`.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	b, err := json.Marshal(v)
	if err != nil {
		msg := fmt.Sprintf("Internal error: could not format JSON. (%s)\n", err)
		http.Error(w, msg, http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, "%s\n", b)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes the frontend-facing {"error": ...} shape. 500s are
// reported to Sentry with their request context.
func writeError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	if statusCode == http.StatusInternalServerError {
		packet := raven.NewPacket(message, raven.NewHttp(r))
		raven.Capture(packet, nil)
	}
	writeJSON(w, statusCode, errorResponse{Error: message})
}

func serverError(format string, a ...interface{}) response {
	return response{
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf(format, a...),
	}
}
