package strava

import (
	"bytes"
	"encoding/json"
	"time"
)

// parseActivitiesPage validates one page of the activities endpoint.
//
// A payload that is not a JSON array returns ok=false. Within an array, each
// element is validated individually: well-formed activities are kept and
// malformed ones dropped, so one drifted record never discards a whole page.
// rawLen is the raw element count, which the aggregator compares against
// per_page to detect the final page.
func parseActivitiesPage(body []byte) (activities []Activity, rawLen int, ok bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, 0, false
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, 0, false
	}

	activities = make([]Activity, 0, len(raw))
	for _, element := range raw {
		var activity Activity
		if err := json.Unmarshal(element, &activity); err != nil {
			continue
		}
		if !validActivity(activity) {
			continue
		}
		activities = append(activities, activity)
	}

	return activities, len(raw), true
}

func validActivity(a Activity) bool {
	if a.ID <= 0 || a.Distance < 0 {
		return false
	}
	if a.SportType == "" && a.Type == "" {
		return false
	}
	if _, err := time.Parse(time.RFC3339, a.StartDateLocal); err != nil {
		return false
	}
	return true
}
