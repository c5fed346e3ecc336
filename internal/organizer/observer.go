package organizer

// Observer receives execution progress. Calls arrive on the executing
// goroutine in plan order.
type Observer interface {
	ExecutionStarted(files int, bytes int64, dryRun bool)
	FileDone(plan DestinationPlan, err error)
	ExecutionFinished()
}

// NopObserver ignores all progress.
type NopObserver struct{}

func (NopObserver) ExecutionStarted(int, int64, bool) {}
func (NopObserver) FileDone(DestinationPlan, error)   {}
func (NopObserver) ExecutionFinished()                {}
