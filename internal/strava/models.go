package strava

// Activity is one recorded exercise session as returned by the Strava
// summary-activities endpoint. Activities are immutable once fetched.
type Activity struct {
	ID                 int64        `json:"id"`
	Name               string       `json:"name"`
	Type               string       `json:"type"`
	SportType          string       `json:"sport_type"`
	Distance           float64      `json:"distance"`
	MovingTime         int          `json:"moving_time"`
	ElapsedTime        int          `json:"elapsed_time"`
	StartDate          string       `json:"start_date"`
	StartDateLocal     string       `json:"start_date_local"`
	TotalElevationGain float64      `json:"total_elevation_gain"`
	Map                *ActivityMap `json:"map,omitempty"`
}

// ActivityMap carries the encoded route geometry when the activity has one.
type ActivityMap struct {
	ID              string `json:"id"`
	SummaryPolyline string `json:"summary_polyline"`
}

// HeatmapDay aggregates the qualifying runs of one local calendar date.
// Dates with no runs are never materialised; the consumer fills gaps.
type HeatmapDay struct {
	Date           string  `json:"date"`
	ActivityCount  int     `json:"activityCount"`
	DistanceMeters float64 `json:"distanceMeters"`
	RunCount       int     `json:"runCount"`
	Miles          float64 `json:"miles"`
}

// Totals summarises the full run list. RunCount currently always equals
// ActivityCount; both are kept for interface stability.
type Totals struct {
	ActivityCount     int     `json:"activityCount"`
	RunCount          int     `json:"runCount"`
	RunDistanceMeters float64 `json:"runDistanceMeters"`
	RunMiles          float64 `json:"runMiles"`
}

// ActivitiesResult is the aggregate returned to the presentation layer.
// Heatmap is sorted by date ascending and its distance sum always matches
// Totals.RunDistanceMeters and the sum over RunActivities.
type ActivitiesResult struct {
	Heatmap       []HeatmapDay `json:"heatmap"`
	RunActivities []Activity   `json:"runActivities"`
	Totals        Totals       `json:"totals"`
}

// EmptyActivitiesResult returns the all-zero result served when the feed is
// disabled or the first page fails. Slices are non-nil so the JSON encoding
// stays `[]`.
func EmptyActivitiesResult() ActivitiesResult {
	return ActivitiesResult{
		Heatmap:       []HeatmapDay{},
		RunActivities: []Activity{},
	}
}
