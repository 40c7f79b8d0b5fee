package api

import (
	"net/http"

	"github.com/wishstox/wishstox-backend/stats"
)

// Stats returns waiting-list signups per day, shaped for chart.js.
func (api API) stats(r *http.Request) response {
	if r.Method != http.MethodGet {
		return response{StatusCode: http.StatusMethodNotAllowed}
	}
	series, err := stats.Get(api.Database)
	if err != nil {
		return serverError(err.Error())
	}
	return response{StatusCode: http.StatusOK, Response: series}
}
