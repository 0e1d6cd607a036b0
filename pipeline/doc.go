// Package pipeline walks an audio dataset, runs one feature transform per
// file across a bounded worker pool and writes each array to a mirrored
// output tree.
//
// The flow is split the same way a run proceeds:
//
//   - discover.go: recursive, extension-filtered walk of the input root
//   - mirror.go:   input path to output directory + .npy file name
//   - process.go:  one file, one Outcome; every per-file error stays here
//   - runner.go:   sequential loop or worker pool, cancellation, summary
//   - stats.go:    Report counters
//
// Only configuration problems (unknown mode, missing input root) make Run
// return an error before processing starts. Everything that goes wrong for
// a single file is reported as a failed Outcome.
package pipeline
