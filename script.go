package framebridge

import (
	"encoding/json"
	"fmt"
)

// scriptStep is a single action in a playback script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Frame  float64 `json:"frame,omitempty"`
	From   float64 `json:"from,omitempty"`
	To     float64 `json:"to,omitempty"`
	Loop   bool    `json:"loop,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// Script sequences playback commands and screenshots across ticks for
// automated visual checks of a FrameLayer. Attach it with Compositor.SetScript.
//
//	{"steps": [
//	  {"action": "seek", "frame": 30},
//	  {"action": "screenshot", "label": "frame-30"},
//	  {"action": "play", "from": 0, "to": 60},
//	  {"action": "wait", "frames": 10},
//	  {"action": "pause"}
//	]}
type Script struct {
	layer     *FrameLayer
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON playback script driving layer.
func LoadScript(jsonData []byte, layer *FrameLayer) (*Script, error) {
	var file scriptFile
	if err := json.Unmarshal(jsonData, &file); err != nil {
		return nil, fmt.Errorf("parse playback script: %w", err)
	}
	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("parse playback script: no steps")
	}
	for i, st := range file.Steps {
		switch st.Action {
		case "seek", "play", "pause", "wait", "screenshot":
		default:
			return nil, fmt.Errorf("parse playback script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{layer: layer, steps: file.Steps}, nil
}

// SetScript attaches s to the compositor. Update steps it before each tick.
// A nil script detaches the current one.
func (c *Compositor) SetScript(s *Script) {
	c.script = s
}

// Done reports whether every step has run.
func (s *Script) Done() bool {
	return s.done
}

// step advances the script by one tick.
func (s *Script) step(c *Compositor) {
	if s.done {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "seek":
		s.layer.Seek(st.Frame)
	case "play":
		s.layer.Play(st.From, st.To, st.Loop)
	case "pause":
		s.layer.Pause()
	case "screenshot":
		c.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this tick counts as one
		}
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 {
		s.done = true
	}
}
