package logging

// Standardized attribute keys. Keeping these in one place makes log output
// greppable across components.
const (
	FieldComponent = "component"
	FieldProvider  = "provider"
	FieldRunID     = "run_id"
	FieldStrategy  = "strategy"
	FieldTrackID   = "track_id"
	FieldFileID    = "file_id"
	FieldScore     = "score"
	FieldMethod    = "method"
	FieldPercent   = "percent"
	FieldETA       = "eta"
	FieldRate      = "rate"
	FieldPath      = "path"
)
