// Package busyness implements the adaptive busyness estimation engine:
// time-of-day period resolution, vote ingest with period-derived
// weights, and the blending of a short live window with long-run
// per-slot historical averages into a discrete crowd-level status.
package busyness
