package strava

import (
	"math"
	"sort"
)

const metersPerMile = 1609.344

// buildResult folds the deduplicated run list into per-date buckets and the
// summary totals. Totals are derived from the same accumulated slice as the
// heatmap, never recomputed independently, so the distance invariant holds by
// construction.
func buildResult(runs []Activity) ActivitiesResult {
	type bucket struct {
		activityCount  int
		distanceMeters float64
		runCount       int
	}

	byDay := make(map[string]*bucket)
	var runDistanceMeters float64

	for _, run := range runs {
		date := run.StartDateLocal
		if len(date) >= 10 {
			date = date[:10]
		}
		day, found := byDay[date]
		if !found {
			day = &bucket{}
			byDay[date] = day
		}
		day.activityCount++
		day.distanceMeters += run.Distance
		day.runCount++
		runDistanceMeters += run.Distance
	}

	dates := make([]string, 0, len(byDay))
	for date := range byDay {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	heatmap := make([]HeatmapDay, 0, len(dates))
	for _, date := range dates {
		day := byDay[date]
		heatmap = append(heatmap, HeatmapDay{
			Date:           date,
			ActivityCount:  day.activityCount,
			DistanceMeters: day.distanceMeters,
			RunCount:       day.runCount,
			Miles:          roundTo2(day.distanceMeters / metersPerMile),
		})
	}

	if runs == nil {
		runs = []Activity{}
	}

	return ActivitiesResult{
		Heatmap:       heatmap,
		RunActivities: runs,
		Totals: Totals{
			ActivityCount:     len(runs),
			RunCount:          len(runs),
			RunDistanceMeters: runDistanceMeters,
			RunMiles:          roundTo2(runDistanceMeters / metersPerMile),
		},
	}
}

// roundTo2 rounds to two decimals, half away from zero.
func roundTo2(value float64) float64 {
	return math.Round(value*100) / 100
}
