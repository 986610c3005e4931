// Package fixtures embeds recorded landmark streams for replay tests.
//
// session.jsonl walks through every mode with a right hand: ten pointing
// frames sweeping the index tip from x=0.30 to x=0.66, a two-finger block
// with one thumb-index and one thumb-middle pinch, four-finger frames rising
// 0.03 per frame, a dropout, a left hand, an open hand, then the
// middle-finger shutdown gesture held for 20 frames.
//
// sweep.jsonl is 30 pointing frames sweeping left to right, for looping.
package fixtures

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/ayusman/phantomtouch/internal/detector"
)

// Recording names.
const (
	Session = "session.jsonl"
	Sweep   = "sweep.jsonl"
)

//go:embed testdata/*.jsonl
var recordingsFS embed.FS

// Open opens an embedded recording by name.
func Open(name string) (fs.File, error) {
	f, err := recordingsFS.Open("testdata/" + name)
	if err != nil {
		return nil, fmt.Errorf("open recording %s: %w", name, err)
	}
	return f, nil
}

// Replay returns a detector that plays back the named recording.
func Replay(name string, loop bool) (*detector.ReplayDetector, error) {
	f, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := detector.NewReplayDetector(f, loop)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}
	return d, nil
}

// List returns the names of all embedded recordings.
func List() ([]string, error) {
	entries, err := recordingsFS.ReadDir("testdata")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
