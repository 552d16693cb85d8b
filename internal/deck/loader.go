package deck

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/matchdeck/internal/careerapi"
)

// ErrSuperseded is returned by Load when its request was cancelled by a load
// for another user, or by Stop, before it finished.
var ErrSuperseded = errors.New("load superseded by a newer request")

// Fetcher loads the match feed of a user.
type Fetcher interface {
	GetMatches(ctx context.Context, userID string) (*careerapi.Feed, error)
}

// Loader sequences feed loads. Concurrent loads for the same user share one
// request; a load for another user cancels the request in flight and any
// result of the cancelled request is discarded.
type Loader struct {
	base    context.Context
	fetcher Fetcher
	logger  *zap.Logger
	group   singleflight.Group

	mu     sync.Mutex
	gen    uint64
	user   string
	reqCtx context.Context
	cancel context.CancelFunc
}

func NewLoader(ctx context.Context, fetcher Fetcher, logger *zap.Logger) *Loader {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loader{
		base:    ctx,
		fetcher: fetcher,
		logger:  logger,
	}
}

func (l *Loader) Load(ctx context.Context, userID string) (*careerapi.Feed, error) {
	gen, reqCtx := l.begin(userID)

	// Keyed by generation too, so a cancelled call is never joined.
	key := fmt.Sprintf("%s#%d", userID, gen)
	ch := l.group.DoChan(key, func() (any, error) {
		return l.fetcher.GetMatches(reqCtx, userID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if !l.isCurrent(gen) {
			l.logger.Debug("discarding stale matches load", zap.String("user_id", userID))
			return nil, ErrSuperseded
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*careerapi.Feed), nil
	}
}

// Stop cancels the request in flight, if any.
func (l *Loader) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.user = ""
}

func (l *Loader) begin(userID string) (uint64, context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel == nil || l.user != userID {
		if l.cancel != nil {
			l.logger.Debug("cancelling matches load", zap.String("user_id", l.user), zap.String("reason", "user changed"))
			l.cancel()
		}
		l.reqCtx, l.cancel = context.WithCancel(l.base)
		l.user = userID
		l.gen++
	}

	return l.gen, l.reqCtx
}

func (l *Loader) isCurrent(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen == gen && l.cancel != nil
}
