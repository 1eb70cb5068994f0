package qlock

/*
Regulator is a control loop component the pool consults on every metrics
tick: it observes the pool's Metrics, says whether work should currently be
held back, and gets a chance to return to normal operation.
*/
type Regulator interface {
	// Observe hands the regulator the pool's current metrics.
	Observe(metrics *Metrics)
	// Limit reports whether the regulated work should be held back.
	Limit() bool
	// Renormalize lets the regulator recover once its restriction has run its course.
	Renormalize()
}
