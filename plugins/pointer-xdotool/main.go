// Package main provides a pointer plugin for X11.
// It moves, clicks and scrolls the pointer via xdotool.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Mode   string          `json:"mode"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type moveParams struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type clickParams struct {
	Button string `json:"button"`
}

type scrollParams struct {
	Amount int `json:"amount"`
}

// X11 button numbers.
var buttons = map[string]string{
	"left":  "1",
	"right": "3",
}

const (
	wheelUp   = "4"
	wheelDown = "5"
)

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	args, err := buildArgs(req)
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}
	if len(args) > 0 {
		if err := runXdotool(args); err != nil {
			writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
			return
		}
	}

	writeSuccessResponse()
}

// buildArgs maps a request to xdotool arguments. A zero scroll yields no
// arguments.
func buildArgs(req Request) ([]string, error) {
	switch req.Action {
	case "move":
		var p moveParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse params: %w", err)
		}
		return []string{"mousemove", "--", strconv.Itoa(p.X), strconv.Itoa(p.Y)}, nil

	case "click":
		var p clickParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse params: %w", err)
		}
		b, ok := buttons[p.Button]
		if !ok {
			return nil, fmt.Errorf("unknown button: %q", p.Button)
		}
		return []string{"click", b}, nil

	case "scroll":
		var p scrollParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse params: %w", err)
		}
		if p.Amount == 0 {
			return nil, nil
		}
		// Positive amounts scroll up.
		b, n := wheelUp, p.Amount
		if n < 0 {
			b, n = wheelDown, -n
		}
		return []string{"click", "--repeat", strconv.Itoa(n), b}, nil

	default:
		return nil, fmt.Errorf("unknown action: %s", req.Action)
	}
}

func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runXdotool(args []string) error {
	cmd := exec.Command("xdotool", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
