package perception

// BumperMonitor folds discrete contact events into the snapshot. A press
// asserts both the contact and obstacle flags immediately; a release
// clears contact only, leaving the obstacle flag for the depth sampler to
// clear once it confirms the path ahead is open.
type BumperMonitor struct {
	board *Board
}

// NewBumperMonitor builds a monitor writing into board.
func NewBumperMonitor(board *Board) *BumperMonitor {
	return &BumperMonitor{board: board}
}

// HandleEvent applies one contact transition.
func (m *BumperMonitor) HandleEvent(e BumperEvent) {
	m.board.publishBumper(e.Pressed)
}
