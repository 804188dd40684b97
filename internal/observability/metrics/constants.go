// Package metrics provides Prometheus metrics for the routing engine.
package metrics

// Play outcome labels
const (
	OutcomeReplaced  = "replaced"  // a replacement clip or effect was applied
	OutcomeUnchanged = "unchanged" // no route matched
	OutcomeSkipped   = "skipped"   // re-entrant or routing disabled
	OutcomeFailed    = "failed"    // routing aborted on error, default playback proceeds
)

// Operation labels for routing errors
const (
	OpPlay    = "play"
	OpStop    = "stop"
	OpReload  = "reload"
	OpOneShot = "one_shot"
	OpUpdate  = "update"
)

// Reload kinds
const (
	ReloadSoft = "soft"
	ReloadHard = "hard"
)

// Status labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
