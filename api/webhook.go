package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"os"

	raven "github.com/getsentry/raven-go"

	"github.com/wishstox/wishstox-backend/db"
	"github.com/wishstox/wishstox-backend/email"
)

type ravenExtraContent string

// Class satisfies raven's Interface interface so we can send this as extra context.
// https://github.com/getsentry/raven-go/issues/125
func (r ravenExtraContent) Class() string {
	return "extra"
}

func (r ravenExtraContent) MarshalJSON() ([]byte, error) {
	return []byte(r), nil
}

// HandleEmailNotification handles bounces and complaints submitted by the
// mail provider to a webhook. The webhook is configured to include a secret
// key stored in the environment; affected recipients land on the suppression
// list and receive no further mail from us.
func HandleEmailNotification(database db.Database) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		keyParam := r.URL.Query()["authorize_key"]
		if len(keyParam) == 0 || keyParam[0] != os.Getenv("EMAIL_WEBHOOK_KEY") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		body, err := ioutil.ReadAll(r.Body)
		if err != nil {
			raven.CaptureError(err, nil)
			return
		}

		data := &email.SuppressionRequest{}
		err = json.Unmarshal(body, data)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			raven.CaptureError(err, nil, ravenExtraContent(body))
			return
		}

		tags := map[string]string{"notification_type": data.Reason}
		raven.CaptureMessage("Received email provider notification", tags, ravenExtraContent(data.Raw))

		for _, recipient := range data.Recipients {
			err = database.AddSuppressedEmail(recipient.EmailAddress, data.Reason, data.Timestamp)
			if err != nil {
				raven.CaptureError(err, nil)
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}
