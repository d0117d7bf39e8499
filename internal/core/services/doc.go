// Package services implements the pipeline's stages and their driver.
//
// Each stage owns exactly one durable output artifact and declares it via
// the Stage interface; the driver re-derives "already done" purely from
// the artifact's presence and validity, never from in-memory state, which
// is what makes an interrupted run resumable.
//
// Execution is strictly sequential: stages never overlap, and within a
// stage remote calls and local I/O happen one at a time.
package services
