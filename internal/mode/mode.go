// Package mode maps finger postures to exclusive pointer control modes.
package mode

import "fmt"

// ControlMode is the active pointer control mode. Exactly one is active at a time.
type ControlMode int

const (
	// Idle issues no pointer actions.
	Idle ControlMode = iota
	// Mouse moves the pointer with the index fingertip.
	Mouse
	// Click turns pinches into left and right clicks.
	Click
	// Scroll turns vertical hand motion into scroll events.
	Scroll
)

// String returns the mode name.
func (m ControlMode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Mouse:
		return "mouse"
	case Click:
		return "click"
	case Scroll:
		return "scroll"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Banner is the status line shown when the mode becomes active.
func (m ControlMode) Banner() string {
	switch m {
	case Mouse:
		return "Mouse Movement Activated"
	case Click:
		return "Click Mode Activated"
	case Scroll:
		return "Scroll Mode Activated"
	default:
		return "All Control Deactivated"
	}
}
