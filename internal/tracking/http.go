package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 5 * time.Second
	defaultRate    = 5
	defaultBurst   = 10
)

// HTTPConfig configures HTTPSink.
type HTTPConfig struct {
	URL       string
	UserAgent string
	// Rate is the sustained number of events per second; zero uses the default.
	Rate  float64
	Burst int
}

// HTTPSink posts every event in its own goroutine. Events above the rate
// limit are dropped.
type HTTPSink struct {
	url        string
	userAgent  string
	HTTPClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	now        func() time.Time

	wg sync.WaitGroup
}

func NewHTTPSink(cfg HTTPConfig, logger *zap.Logger) *HTTPSink {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := cfg.Rate
	if r <= 0 {
		r = defaultRate
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	return &HTTPSink{
		url:        cfg.URL,
		userAgent:  cfg.UserAgent,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(r), burst),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *HTTPSink) Track(ctx context.Context, event Event) {
	if !s.limiter.Allow() {
		s.logger.Debug("dropping tracking event", zap.String("event", string(event.Type)), zap.String("reason", "rate limited"))
		return
	}

	envelope := NewEnvelope(event, s.now())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// Delivery outlives the caller's request scope.
		if err := s.post(context.WithoutCancel(ctx), envelope); err != nil {
			s.logger.Debug("tracking event not delivered", zap.String("event", string(event.Type)), zap.Error(err))
		}
	}()
}

// Close waits for in-flight posts until ctx is done.
func (s *HTTPSink) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *HTTPSink) post(ctx context.Context, envelope Envelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	return nil
}
