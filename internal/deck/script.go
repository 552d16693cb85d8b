package deck

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Gesture is one recorded interaction with the stack. Exactly one field is set.
type Gesture struct {
	Drag *float64 `yaml:"drag,omitempty"`
	Key  string   `yaml:"key,omitempty"`
	Save bool     `yaml:"save,omitempty"`
	Open bool     `yaml:"open,omitempty"`
}

func (g Gesture) Validate() error {
	set := 0
	if g.Drag != nil {
		set++
	}
	if g.Key != "" {
		set++
		if KeyDirection(g.Key) == None {
			return fmt.Errorf("unsupported key %q", g.Key)
		}
	}
	if g.Save {
		set++
	}
	if g.Open {
		set++
	}

	if set != 1 {
		return errors.New("exactly one of drag, key, save, open must be set")
	}
	return nil
}

// Summary is the result of replaying a script.
type Summary struct {
	Steps     int
	SnapBacks int
	Opened    int
	Cursor    int
	Applied   []string
	Saved     []string
	Dismissed []string
}

// ParseScript decodes a YAML list of gestures.
func ParseScript(data []byte) ([]Gesture, error) {
	var gestures []Gesture
	if err := yaml.Unmarshal(data, &gestures); err != nil {
		return nil, fmt.Errorf("parse gestures: %w", err)
	}

	for i, g := range gestures {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("gesture %d: %w", i+1, err)
		}
	}

	return gestures, nil
}

func LoadScript(path string) ([]Gesture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %q: %w", path, err)
	}
	return ParseScript(data)
}

// Replay feeds the gestures to the session in order.
func (s *Session) Replay(gestures []Gesture) (Summary, error) {
	summary := Summary{}
	for i, g := range gestures {
		if err := g.Validate(); err != nil {
			return summary, fmt.Errorf("gesture %d: %w", i+1, err)
		}

		switch {
		case g.Drag != nil:
			if s.Drag(*g.Drag).SnapBack {
				summary.SnapBacks++
			}
		case g.Key != "":
			s.Key(g.Key)
		case g.Save:
			s.Save(s.Top())
		case g.Open:
			if top := s.Top(); top != nil {
				if _, ok := s.Open(top.ID); ok {
					summary.Opened++
				}
				s.CloseDetail()
			}
		}
		summary.Steps++
	}

	summary.Cursor = s.Cursor()
	summary.Applied = s.Applied()
	summary.Saved = s.Saved()
	summary.Dismissed = s.Dismissed()
	return summary, nil
}
