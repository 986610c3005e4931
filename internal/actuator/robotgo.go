package actuator

import (
	"github.com/go-vgo/robotgo"

	"github.com/ayusman/phantomtouch/internal/click"
)

// Robotgo drives the system pointer in-process.
type Robotgo struct{}

// NewRobotgo creates the in-process backend.
func NewRobotgo() *Robotgo {
	return &Robotgo{}
}

func (Robotgo) MoveTo(x, y int) {
	robotgo.Move(x, y)
}

func (Robotgo) Click(button click.Button) {
	robotgo.Click(string(button))
}

// ScrollBy scrolls vertically; positive amounts scroll up.
func (Robotgo) ScrollBy(amount int) {
	robotgo.Scroll(0, amount)
}

// ScreenSize returns the main display size in pixels.
func ScreenSize() (width, height int) {
	return robotgo.GetScreenSize()
}
