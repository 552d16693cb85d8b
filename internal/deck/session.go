package deck

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/matchdeck/internal/careerapi"
	"github.com/spigell/matchdeck/internal/filtering"
	"github.com/spigell/matchdeck/internal/logger"
	"github.com/spigell/matchdeck/internal/tracking"
)

// Config holds the collaborators of a Session.
type Config struct {
	Sink   tracking.Sink
	Logger *zap.Logger
	UserID string
}

// Outcome describes what a swipe did.
type Outcome struct {
	Direction Direction
	// Match is the consumed card; nil when the stack was exhausted.
	Match *careerapi.Match
	// SnapBack is set when a drag ended under the threshold.
	SnapBack bool
}

// Counters summarize the session sets.
type Counters struct {
	Applied int
	Saved   int
	Passed  int
}

// Session is the state of one browsing session over a candidate list. It is
// not safe for concurrent use; all calls are expected from the UI goroutine.
type Session struct {
	// ctx is used only for tracking calls
	ctx    context.Context
	id     string
	sink   tracking.Sink
	logger *zap.Logger

	source   *careerapi.Matches
	criteria filtering.Criteria
	filtered []*careerapi.Match
	cursor   int

	saved     *IDSet
	applied   *IDSet
	dismissed *IDSet

	opened         *careerapi.Match
	lastAction     string
	lastImpression string
}

func New(ctx context.Context, cfg Config) *Session {
	sink := cfg.Sink
	if sink == nil {
		sink = tracking.Nop()
	}

	if ctx == nil {
		ctx = context.Background()
	}

	id := uuid.NewString()

	return &Session{
		ctx:       ctx,
		id:        id,
		sink:      sink,
		logger:    logger.WithSession(cfg.Logger, id, cfg.UserID),
		source:    &careerapi.Matches{},
		saved:     NewIDSet(),
		applied:   NewIDSet(),
		dismissed: NewIDSet(),
	}
}

func (s *Session) ID() string { return s.id }

// Load replaces the candidate list and resets the cursor.
func (s *Session) Load(m *careerapi.Matches) {
	if m == nil {
		m = &careerapi.Matches{}
	}

	s.source = m
	s.cursor = 0
	s.opened = nil
	s.refilter()

	s.logger.Debug("loaded matches", zap.Int("total", m.Len()), zap.Int("filtered", len(s.filtered)))
}

// SetCriteria re-filters the current list. The cursor is kept and clamped.
func (s *Session) SetCriteria(c filtering.Criteria) {
	s.criteria = c
	s.refilter()

	s.logger.Debug("criteria changed", zap.Int("filtered", len(s.filtered)), zap.Int("cursor", s.cursor))
}

func (s *Session) Criteria() filtering.Criteria { return s.criteria }

func (s *Session) Source() *careerapi.Matches { return s.source }

// Filtered returns a copy of the filtered list.
func (s *Session) Filtered() []*careerapi.Match {
	out := make([]*careerapi.Match, len(s.filtered))
	copy(out, s.filtered)
	return out
}

func (s *Session) Cursor() int { return s.cursor }

func (s *Session) Visible() []*careerapi.Match { return Window(s.filtered, s.cursor) }

func (s *Session) Layers() []Layer { return Stack(s.filtered, s.cursor) }

// Top returns the interactive card, or nil when the stack is exhausted.
func (s *Session) Top() *careerapi.Match {
	if s.cursor < len(s.filtered) {
		return s.filtered[s.cursor]
	}
	return nil
}

// Advance moves the cursor by one, never past the end of the filtered list.
func (s *Session) Advance() {
	s.cursor = min(s.cursor+1, len(s.filtered))
	s.impression()
}

// Swipe classifies the top card and always advances. Only Left and Right
// are swipes; any other direction leaves the session untouched.
func (s *Session) Swipe(dir Direction) Outcome {
	top := s.Top()
	if dir != Left && dir != Right {
		return Outcome{Direction: None, Match: top}
	}
	outcome := Outcome{Direction: dir, Match: top}

	if top != nil {
		switch dir {
		case Right:
			s.applied.Add(top.ID)
			s.lastAction = fmt.Sprintf("Applied to %s", top.Title)
		case Left:
			s.dismissed.Add(top.ID)
			s.lastAction = fmt.Sprintf("Dismissed %s", top.Title)
		}

		s.track(tracking.Event{Type: tracking.KindSwipe, Direction: dir.String(), JobID: top.ID})
		if dir == Right {
			s.track(tracking.Event{Type: tracking.KindApply, JobID: top.ID})
		}

		s.logger.Debug("swiped", zap.String(logger.FieldMatch, top.ID), zap.Stringer("direction", dir))
	}

	s.Advance()
	return outcome
}

// Drag runs a full pointer interaction on the top card with the given
// release offset. Releases under the threshold snap back and change nothing.
func (s *Session) Drag(offsetX float64) Outcome {
	var card Card
	// A fresh card is Idle, so the transitions below cannot fail.
	_ = card.Press()
	_ = card.Move(offsetX)
	state, _ := card.Release()

	switch state {
	case SwipedLeft:
		return s.Swipe(Left)
	case SwipedRight:
		return s.Swipe(Right)
	default:
		return Outcome{Direction: None, Match: s.Top(), SnapBack: true}
	}
}

// Key handles a key press on the top card. Unknown keys do nothing.
func (s *Session) Key(key string) Outcome {
	dir := KeyDirection(key)
	if dir == None {
		return Outcome{Direction: None, Match: s.Top()}
	}
	return s.Swipe(dir)
}

// Save marks a match as saved. The cursor does not move.
func (s *Session) Save(m *careerapi.Match) {
	if m == nil {
		return
	}

	s.saved.Add(m.ID)
	s.lastAction = fmt.Sprintf("Saved %s", m.Title)
	s.track(tracking.Event{Type: tracking.KindSave, JobID: m.ID})
}

// Open shows the detail overlay for a match from the filtered list.
func (s *Session) Open(id string) (*careerapi.Match, bool) {
	for _, m := range s.filtered {
		if m.ID == id {
			s.opened = m
			s.track(tracking.Event{Type: tracking.KindModalOpen, JobID: m.ID})
			return m, true
		}
	}
	return nil, false
}

func (s *Session) Opened() *careerapi.Match { return s.opened }

func (s *Session) CloseDetail() { s.opened = nil }

// SaveFromDetail saves the opened match and closes the overlay.
func (s *Session) SaveFromDetail() {
	if s.opened == nil {
		return
	}
	s.Save(s.opened)
	s.opened = nil
}

// ApplyFromDetail marks the opened match applied and closes the overlay.
// Unlike a swipe, the card stays where it is.
func (s *Session) ApplyFromDetail() {
	m := s.opened
	if m == nil {
		return
	}

	s.applied.Add(m.ID)
	s.lastAction = fmt.Sprintf("Applied to %s", m.Title)
	s.opened = nil
	s.track(tracking.Event{Type: tracking.KindApply, JobID: m.ID})
}

func (s *Session) Saved() []string     { return s.saved.IDs() }
func (s *Session) Applied() []string   { return s.applied.IDs() }
func (s *Session) Dismissed() []string { return s.dismissed.IDs() }

func (s *Session) IsSaved(id string) bool   { return s.saved.Has(id) }
func (s *Session) IsApplied(id string) bool { return s.applied.Has(id) }

func (s *Session) Counters() Counters {
	return Counters{
		Applied: s.applied.Len(),
		Saved:   s.saved.Len(),
		Passed:  s.dismissed.Len(),
	}
}

// LastAction is the banner text for the latest action, empty before any.
func (s *Session) LastAction() string { return s.lastAction }

// DismissedMatches returns the dismissed matches still present in the source list.
func (s *Session) DismissedMatches() *careerapi.Matches {
	out := &careerapi.Matches{}
	for _, id := range s.dismissed.IDs() {
		if m := s.source.FindByID(id); m != nil {
			out.Items = append(out.Items, m)
		}
	}
	return out
}

func (s *Session) refilter() {
	s.filtered = s.criteria.Apply(s.source)
	s.cursor = min(s.cursor, len(s.filtered))
	s.impression()
}

// impression reports the visible window whenever it changes.
func (s *Session) impression() {
	visible := s.Visible()
	if len(visible) == 0 {
		s.lastImpression = ""
		return
	}

	ids := make([]string, 0, len(visible))
	for _, m := range visible {
		ids = append(ids, m.ID)
	}

	key := strings.Join(ids, ",")
	if key == s.lastImpression {
		return
	}
	s.lastImpression = key

	s.track(tracking.Event{Type: tracking.KindImpression, JobIDs: ids})
}

func (s *Session) track(event tracking.Event) {
	s.sink.Track(s.ctx, event)
}
