package main

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name   string
		action string
		params string
		want   []string
	}{
		{"move", "move", `{"x":640,"y":360}`, []string{"mousemove", "--", "640", "360"}},
		{"left click", "click", `{"button":"left"}`, []string{"click", "1"}},
		{"right click", "click", `{"button":"right"}`, []string{"click", "3"}},
		{"scroll up", "scroll", `{"amount":3}`, []string{"click", "--repeat", "3", "4"}},
		{"scroll down", "scroll", `{"amount":-2}`, []string{"click", "--repeat", "2", "5"}},
		{"zero scroll", "scroll", `{"amount":0}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildArgs(Request{Action: tt.action, Params: json.RawMessage(tt.params)})
			if err != nil {
				t.Fatalf("buildArgs() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("buildArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"unknown action", Request{Action: "keystroke", Params: json.RawMessage(`{}`)}},
		{"unknown button", Request{Action: "click", Params: json.RawMessage(`{"button":"middle"}`)}},
		{"bad params", Request{Action: "move", Params: json.RawMessage(`{"x":"left"}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildArgs(tt.req); err == nil {
				t.Error("buildArgs() error = nil, want error")
			}
		})
	}
}
