package detector

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sync"

	"gocv.io/x/gocv"
)

// ReplayDetector plays back a recorded landmark stream instead of running
// inference. The recording uses the landmark service's wire format: one JSON
// object {"hands": [...]} per line, one line per frame.
type ReplayDetector struct {
	mu     sync.Mutex
	frames [][]HandLandmarks
	next   int
	loop   bool
}

// NewReplayDetector reads a whole recording from r. Blank lines are skipped.
func NewReplayDetector(r io.Reader, loop bool) (*ReplayDetector, error) {
	var frames [][]HandLandmarks

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		hands, err := decodeResponse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		frames = append(frames, hands)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}

	return &ReplayDetector{frames: frames, loop: loop}, nil
}

// Len returns the number of recorded frames.
func (d *ReplayDetector) Len() int {
	return len(d.frames)
}

// Detect ignores the frame and returns the next recorded result.
// It returns io.EOF once the recording is exhausted and looping is off.
func (d *ReplayDetector) Detect(_ *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.next >= len(d.frames) {
		if !d.loop || len(d.frames) == 0 {
			return nil, io.EOF
		}
		d.next = 0
	}

	hands := d.frames[d.next]
	d.next++
	return hands, nil
}

// Close is a no-op.
func (d *ReplayDetector) Close() error {
	return nil
}
