package port

// TrackingPolicy answers block/clean questions for URLs. Policy internals
// live outside this core.
type TrackingPolicy interface {
	ShouldBlock(url string) bool
	CleanURL(url string) string
}
