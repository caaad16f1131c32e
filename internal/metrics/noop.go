package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSignIn is a no-op.
func (n *NoopRecorder) IncSignIn(result string) {}

// IncSignOut is a no-op.
func (n *NoopRecorder) IncSignOut(result string) {}

// IncKeyGenerated is a no-op.
func (n *NoopRecorder) IncKeyGenerated() {}

// IncKeyDeleted is a no-op.
func (n *NoopRecorder) IncKeyDeleted() {}

// IncKeysLoaded is a no-op.
func (n *NoopRecorder) IncKeysLoaded() {}

// IncLoadFailed is a no-op.
func (n *NoopRecorder) IncLoadFailed() {}

// SetRenderedKeys is a no-op.
func (n *NoopRecorder) SetRenderedKeys(count int) {}
