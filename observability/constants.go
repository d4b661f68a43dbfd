package observability

// Metric name prefixes
const (
	MetricPrefix = "typerbot"
)

// Metric names
const (
	// Wagering metrics
	BetsPlacedTotal  = MetricPrefix + ".bets.placed_total"
	StakedPoints     = MetricPrefix + ".bets.staked_points_total"
	BetsSettledTotal = MetricPrefix + ".bets.settled_total"
	CreditedPoints   = MetricPrefix + ".bets.credited_points_total"

	// Accrual metrics
	PointsAwardedTotal = MetricPrefix + ".points.awarded_total"
	PromotionsTotal    = MetricPrefix + ".ranks.promotions_total"

	// Settlement sweep metrics
	SweepsTotal        = MetricPrefix + ".settlement.sweeps_total"
	SweepFailuresTotal = MetricPrefix + ".settlement.failures_total"
	SweepDuration      = MetricPrefix + ".settlement.sweep_duration"
)

// Label keys
const (
	LabelState   = "state"
	LabelSource  = "source"
	LabelRank    = "rank"
	LabelAborted = "aborted"
)
