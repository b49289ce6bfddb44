// Package forecast holds the domain model shared by the fetchers, the
// extractor, the snapshot stores and the coordinator.
package forecast

import "time"

// ForecastDay is one day's entry inside a location block. Every field is
// optional: the source markup frequently omits cells, and an omitted cell is
// a null, never a dropped row.
type ForecastDay struct {
	Date        *string `json:"date"`
	HighTemp    *string `json:"highTemp"`
	LowTemp     *string `json:"lowTemp"`
	Description *string `json:"description"`
}

// LocationForecast is one place's forecast in source-document order.
type LocationForecast struct {
	Name string        `json:"name"`
	Days []ForecastDay `json:"days"`
}

// Snapshot is the unit of cached output paired with its capture time.
type Snapshot struct {
	CapturedAt time.Time
	Locations  []LocationForecast
}

// Fresh reports whether the snapshot is still inside the TTL window at the
// given instant. The check is strictly less-than: a snapshot exactly TTL old
// is already stale.
func (s *Snapshot) Fresh(ttl time.Duration, now time.Time) bool {
	if s == nil {
		return false
	}
	return now.Sub(s.CapturedAt) < ttl
}
