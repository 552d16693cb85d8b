package deck

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spigell/matchdeck/internal/tracking"
)

const sampleScript = `
- drag: 200
- drag: 40
- key: left
- open: true
- save: true
- key: l
`

func TestParseScript(t *testing.T) {
	t.Parallel()

	gestures, err := ParseScript([]byte(sampleScript))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(gestures) != 6 {
		t.Fatalf("expected 6 gestures, got %d", len(gestures))
	}
	if gestures[0].Drag == nil || *gestures[0].Drag != 200 {
		t.Fatalf("unexpected first gesture: %+v", gestures[0])
	}
	if gestures[2].Key != "left" || !gestures[3].Open || !gestures[4].Save {
		t.Fatalf("unexpected gestures: %+v", gestures)
	}
}

func TestParseScriptErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"two fields":  "- drag: 10\n  key: left\n",
		"empty":       "- {}\n",
		"unknown key": "- key: up\n",
		"not a list":  "drag: 10\n",
	}

	for name, script := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseScript([]byte(script)); err == nil {
				t.Fatalf("expected error for %q", script)
			}
		})
	}
}

func TestReplay(t *testing.T) {
	t.Parallel()

	gestures, err := ParseScript([]byte(sampleScript))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	rec := &tracking.Recorder{}
	s := New(nil, Config{Sink: rec})
	s.Load(matchesOf("A", "B", "C", "D"))

	summary, err := s.Replay(gestures)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	want := Summary{
		Steps:     6,
		SnapBacks: 1,
		Opened:    1,
		Cursor:    3,
		Applied:   []string{"A", "C"},
		Saved:     []string{"C"},
		Dismissed: []string{"B"},
	}
	if !reflect.DeepEqual(summary, want) {
		t.Fatalf("unexpected summary:\n got %+v\nwant %+v", summary, want)
	}
	if s.Opened() != nil {
		t.Fatalf("replay must close the detail overlay")
	}
}

func TestLoadScript(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "gestures.yaml")
	if err := os.WriteFile(path, []byte(sampleScript), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	gestures, err := LoadScript(path)
	if err != nil || len(gestures) != 6 {
		t.Fatalf("unexpected result: %d gestures, %v", len(gestures), err)
	}

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading script") {
		t.Fatalf("expected read error, got %v", err)
	}
}
