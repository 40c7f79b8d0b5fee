package stats

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/wishstox/wishstox-backend/models"
)

// Store wraps storage for waiting-list signup statistics.
type Store interface {
	GetDailySignups() (models.TimeSeries, error)
}

// Series represents signups per day, ordered by day.
type Series models.TimeSeries

// MarshalJSON marshals a Series to the format expected by chart.js.
// See https://www.chartjs.org/docs/latest/
func (s Series) MarshalJSON() ([]byte, error) {
	type xyPt struct {
		X time.Time `json:"x"`
		Y float64   `json:"y"`
	}
	days := make([]time.Time, 0, len(s))
	for day := range s {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	xySeries := make([]xyPt, 0, len(days))
	for _, day := range days {
		xySeries = append(xySeries, xyPt{X: day, Y: s[day]})
	}
	return json.Marshal(xySeries)
}

// Get retrieves daily waiting-list signup counts for charting.
func Get(store Store) (Series, error) {
	series, err := store.GetDailySignups()
	if err != nil {
		return nil, err
	}
	return Series(series), nil
}
