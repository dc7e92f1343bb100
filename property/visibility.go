package property

// Visibility classifies what a change to a property demands from the
// renderer. The zero value is Redraw, which is also the factory default
// for declarations that leave it out.
type Visibility uint8

const (
	// Redraw means a change requires the node to be redrawn.
	Redraw Visibility = iota
	// Refresh means a change requires a re-layout, then a redraw.
	Refresh
	// Invisible means a change has no visual effect.
	Invisible
)

func (v Visibility) String() string {
	switch v {
	case Redraw:
		return "redraw"
	case Refresh:
		return "refresh"
	case Invisible:
		return "invisible"
	default:
		return "unknown"
	}
}
