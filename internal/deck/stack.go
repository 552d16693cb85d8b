package deck

import "github.com/spigell/matchdeck/internal/careerapi"

const (
	// VisibleDepth is how many cards the stack shows at once.
	VisibleDepth = 3
	// LayerOffset is the vertical shift per layer.
	LayerOffset = 8
	// LayerScaleStep is the scale reduction per layer.
	LayerScaleStep = 0.03
)

// Layer is one rendered card of the stack. Position 0 is the top card.
type Layer struct {
	Match       *careerapi.Match
	Position    int
	ZIndex      int
	OffsetY     int
	Scale       float64
	Interactive bool
}

// Window returns filtered[cursor : cursor+VisibleDepth], clamped to the list.
func Window(filtered []*careerapi.Match, cursor int) []*careerapi.Match {
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(filtered) {
		return nil
	}

	end := min(cursor+VisibleDepth, len(filtered))
	out := make([]*careerapi.Match, end-cursor)
	copy(out, filtered[cursor:end])
	return out
}

// Stack lays out the visible window with decreasing z-order and growing offset.
func Stack(filtered []*careerapi.Match, cursor int) []Layer {
	visible := Window(filtered, cursor)
	layers := make([]Layer, 0, len(visible))
	for i, m := range visible {
		layers = append(layers, Layer{
			Match:       m,
			Position:    i,
			ZIndex:      VisibleDepth - i,
			OffsetY:     i * LayerOffset,
			Scale:       1 - float64(i)*LayerScaleStep,
			Interactive: i == 0,
		})
	}
	return layers
}
