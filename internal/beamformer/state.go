package beamformer

// State is the lifecycle position of a Beamformer.
type State int

const (
	Uninitialized State = iota
	// WeightsLoaded means a weight copy has been issued but not yet confirmed.
	WeightsLoaded
	Ready
	Failed
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case WeightsLoaded:
		return "weights-loaded"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
