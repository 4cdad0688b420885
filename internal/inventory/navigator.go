package inventory

import "errors"

// NavState is the navigator's current screen.
type NavState string

const (
	// StateSetup runs a generation batch; entered at first load when the
	// inventory is empty, or explicitly to generate more units.
	StateSetup NavState = "setup"
	// StateFolders browses the Building/Floor folder tree.
	StateFolders NavState = "folders"
	// StateFlatDetail shows one selected flat.
	StateFlatDetail NavState = "flat_detail"
)

// Navigator transition errors. A rejected transition leaves the machine
// unchanged.
var (
	ErrNotInFolders = errors.New("navigator: not browsing folders")
	ErrNotInSetup   = errors.New("navigator: not in setup")
	ErrNotInDetail  = errors.New("navigator: no flat open")
	ErrAtRoot       = errors.New("navigator: already at the top level")
	ErrPathFull     = errors.New("navigator: already at flat level")
)

// Navigator tracks the current path into the unit hierarchy and the current
// view mode for one session. It is long-lived and has no terminal state.
type Navigator struct {
	state        NavState
	path         []string
	selectedFlat string
}

// NewNavigator returns a navigator in its initial state: Setup when the
// inventory is empty at first load, otherwise Folders at the root.
func NewNavigator(flatCount int) *Navigator {
	if flatCount == 0 {
		return &Navigator{state: StateSetup}
	}
	return &Navigator{state: StateFolders}
}

// State returns the current view mode.
func (n *Navigator) State() NavState { return n.state }

// Path returns a copy of the current folder path (0, 1, or 2 elements).
func (n *Navigator) Path() []string {
	out := make([]string, len(n.path))
	copy(out, n.path)
	return out
}

// SelectedFlat returns the open flat's identifier, empty outside FlatDetail.
func (n *Navigator) SelectedFlat() string { return n.selectedFlat }

// EnterFolder descends one level into the folder tree.
func (n *Navigator) EnterFolder(key string) error {
	if n.state != StateFolders {
		return ErrNotInFolders
	}
	if len(n.path) >= 2 {
		return ErrPathFull
	}
	n.path = append(n.path, key)
	return nil
}

// OpenFlat transitions to FlatDetail for the given flat, keeping the current
// path so Back returns to the same folder.
func (n *Navigator) OpenFlat(id string) error {
	if n.state != StateFolders {
		return ErrNotInFolders
	}
	n.state = StateFlatDetail
	n.selectedFlat = id
	return nil
}

// Back pops one level: FlatDetail returns to Folders with the path unchanged,
// Folders pops one path element.
func (n *Navigator) Back() error {
	switch n.state {
	case StateFlatDetail:
		n.state = StateFolders
		n.selectedFlat = ""
		return nil
	case StateFolders:
		if len(n.path) == 0 {
			return ErrAtRoot
		}
		n.path = n.path[:len(n.path)-1]
		return nil
	default:
		return ErrNotInFolders
	}
}

// EnterSetup switches to Setup to run a new generation batch. Legal even when
// flats already exist.
func (n *Navigator) EnterSetup() error {
	if n.state == StateSetup {
		return nil
	}
	if n.state != StateFolders {
		return ErrNotInFolders
	}
	n.state = StateSetup
	return nil
}

// FinishSetup exits Setup after a successful generation. The path resets to
// the root since the tree just changed shape.
func (n *Navigator) FinishSetup() error {
	if n.state != StateSetup {
		return ErrNotInSetup
	}
	n.state = StateFolders
	n.path = nil
	return nil
}

// CancelSetup exits Setup without generating, returning to the folder view at
// the path the session left off.
func (n *Navigator) CancelSetup() error {
	if n.state != StateSetup {
		return ErrNotInSetup
	}
	n.state = StateFolders
	return nil
}
