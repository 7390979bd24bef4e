package viewstate

// State is the coordinator's initialization state
type State int

const (
	Uninitialized State = iota
	ResolvingPreferences
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case ResolvingPreferences:
		return "resolving-preferences"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Origin records which priority tier produced the initial selection
type Origin int

const (
	FromPreference Origin = iota + 1
	FromCurrentSeason
	FromServerDefault
)

func (o Origin) String() string {
	switch o {
	case FromPreference:
		return "preference"
	case FromCurrentSeason:
		return "current-season"
	case FromServerDefault:
		return "server-default"
	default:
		return "none"
	}
}
