// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Session metrics
	IncSignIn(result string) // result: "success" or "failure"
	IncSignOut(result string)

	// Key lifecycle metrics
	IncKeyGenerated()
	IncKeyDeleted()
	IncKeysLoaded()
	IncLoadFailed()

	// Presentation metrics
	SetRenderedKeys(count int)
}
