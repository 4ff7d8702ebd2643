package models

// Metric names. They double as export column headers.
const (
	// MLB power hitting
	MetricBarrelPct  = "Barrel %"
	MetricExitVelo   = "Exit Velo"
	MetricHardHitPct = "Hard Hit %"
	MetricHRFBPct    = "HR/FB %"

	// NBA scoring
	MetricUsagePct      = "Usage %"
	MetricOppDefRating  = "Opponent Def Rating"
	MetricPPGLast3      = "Last 3 Games PPG"
	MetricMinutes       = "Minutes"
	MetricThreesPerGame = "3PM per Game"
	MetricFGAPerGame    = "FGA per Game"

	// Context
	MetricWindMPH = "Wind MPH"
	MetricTempF   = "Temp F"
	MetricOdds    = "Odds"
)
