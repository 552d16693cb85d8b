package deck

import (
	"errors"
	"fmt"
	"strings"
)

// DragThreshold is the horizontal distance, in pixels, a card has to travel
// before a release counts as a swipe.
const DragThreshold = 140.0

var ErrInvalidTransition = errors.New("invalid card transition")

// Direction is the outcome of a swipe gesture.
type Direction int

const (
	None Direction = iota
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// ParseDirection accepts "left" and "right" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return None, fmt.Errorf("unknown direction %q", s)
	}
}

// ClassifyDrag maps a release offset to a swipe. Offsets within the
// threshold snap back.
func ClassifyDrag(offsetX float64) Direction {
	switch {
	case offsetX > DragThreshold:
		return Right
	case offsetX < -DragThreshold:
		return Left
	default:
		return None
	}
}

// KeyDirection maps arrow keys (and vi keys) to a swipe.
func KeyDirection(key string) Direction {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "left", "arrowleft", "h":
		return Left
	case "right", "arrowright", "l":
		return Right
	default:
		return None
	}
}

// CardState is the state of the top card while it is being handled.
type CardState int

const (
	Idle CardState = iota
	Dragging
	SwipedLeft
	SwipedRight
	SnapBack
)

func (s CardState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case SwipedLeft:
		return "swiped_left"
	case SwipedRight:
		return "swiped_right"
	case SnapBack:
		return "snap_back"
	default:
		return fmt.Sprintf("card_state(%d)", int(s))
	}
}

// Card tracks a single pointer interaction with the top card:
// Idle -> Dragging -> SwipedLeft | SwipedRight | SnapBack.
// A snap back returns the card to Idle; a swipe is terminal.
type Card struct {
	state  CardState
	offset float64
}

func (c *Card) State() CardState { return c.state }

func (c *Card) Offset() float64 { return c.offset }

func (c *Card) Press() error {
	if c.state != Idle {
		return fmt.Errorf("%w: press while %s", ErrInvalidTransition, c.state)
	}
	c.state = Dragging
	c.offset = 0
	return nil
}

func (c *Card) Move(offsetX float64) error {
	if c.state != Dragging {
		return fmt.Errorf("%w: move while %s", ErrInvalidTransition, c.state)
	}
	c.offset = offsetX
	return nil
}

// Release ends the drag and returns the resulting state.
func (c *Card) Release() (CardState, error) {
	if c.state != Dragging {
		return c.state, fmt.Errorf("%w: release while %s", ErrInvalidTransition, c.state)
	}

	switch ClassifyDrag(c.offset) {
	case Left:
		c.state = SwipedLeft
	case Right:
		c.state = SwipedRight
	default:
		c.state = Idle
		c.offset = 0
		return SnapBack, nil
	}

	return c.state, nil
}
