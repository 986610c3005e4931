package app

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/phantomtouch/internal/control"
	"github.com/ayusman/phantomtouch/internal/detector"
)

// QuitKey closes the overlay window.
const QuitKey = 'q'

// Display shows annotated frames.
type Display interface {
	// Show renders frame and reports whether the user asked to quit.
	Show(frame *gocv.Mat) bool
	Close() error
}

// Window is a Display backed by a HighGUI window.
type Window struct {
	window *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

// Show displays frame and polls the keyboard for one millisecond.
func (w *Window) Show(frame *gocv.Mat) bool {
	w.window.IMShow(*frame)
	key := w.window.WaitKey(1)
	return key == QuitKey
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.window.Close()
}

var (
	bannerColor     = color.RGBA{G: 255}
	pausedColor     = color.RGBA{R: 255, G: 165}
	landmarkColor   = color.RGBA{R: 255}
	connectionColor = color.RGBA{R: 255, G: 255, B: 255}
)

// handConnections are the landmark pairs drawn as the hand skeleton.
var handConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP}, {detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP}, {detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP}, {detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP}, {detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.Wrist, detector.PinkyMCP}, {detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP}, {detector.PinkyDIP, detector.PinkyTip},
}

// Annotate draws the tracked hand and the mode banner onto frame.
func Annotate(frame *gocv.Mat, result control.FrameResult, enabled bool) {
	if result.Hand != nil {
		pts := pixelPoints(result.Hand, frame.Cols(), frame.Rows())
		for _, c := range handConnections {
			gocv.Line(frame, pts[c[0]], pts[c[1]], connectionColor, 2)
		}
		for _, p := range pts {
			gocv.Circle(frame, p, 4, landmarkColor, -1)
		}
	}

	gocv.PutText(frame, result.Mode.Banner(), image.Pt(50, 50), gocv.FontHersheySimplex, 1, bannerColor, 2)
	if !enabled {
		gocv.PutText(frame, "Paused", image.Pt(50, 90), gocv.FontHersheySimplex, 1, pausedColor, 2)
	}
}

func pixelPoints(h *detector.HandLandmarks, width, height int) [detector.NumLandmarks]image.Point {
	var pts [detector.NumLandmarks]image.Point
	for i, p := range h.Points {
		pts[i] = image.Pt(int(p.X*float64(width)), int(p.Y*float64(height)))
	}
	return pts
}
