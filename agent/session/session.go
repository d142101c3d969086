// Package session tracks live chat connections. A session binds one socket to
// one customer; the binding can be changed explicitly but never implicitly.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	contractx "github.com/nimbushome/support-agent/agent/contract"
)

// ErrClosed marks a connection that will never accept another write. Callers
// drop the session instead of retrying.
var ErrClosed = errors.New("session: connection closed")

const (
	defaultDeliveryAttempts = 3
	defaultRetryBackoff     = 250 * time.Millisecond
)

// Conn is the slice of *websocket.Conn the session needs. Tests substitute
// fakes.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Config struct {
	DeliveryAttempts int           `split_words:"true" default:"3"`
	RetryBackoff     time.Duration `split_words:"true" default:"250ms"`
}

type Session struct {
	ID string

	mu         sync.Mutex
	customerID string
	conn       Conn
	closed     bool

	attempts int
	backoff  time.Duration
	sleep    func(time.Duration)
	logger   zerolog.Logger
}

func New(conn Conn, customerID string, logger zerolog.Logger, opts ...Config) *Session {
	cfg := Config{DeliveryAttempts: defaultDeliveryAttempts, RetryBackoff: defaultRetryBackoff}
	if len(opts) > 0 {
		cfg = opts[0]
	}
	if cfg.DeliveryAttempts <= 0 {
		cfg.DeliveryAttempts = defaultDeliveryAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	return &Session{
		ID:         uuid.NewString(),
		customerID: strings.TrimSpace(customerID),
		conn:       conn,
		attempts:   cfg.DeliveryAttempts,
		backoff:    cfg.RetryBackoff,
		sleep:      time.Sleep,
		logger:     logger,
	}
}

func (s *Session) CustomerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customerID
}

// Rebind switches the session to another customer. This is the only way the
// binding changes after New.
func (s *Session) Rebind(customerID string) error {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return fmt.Errorf("%w: customer id is empty", contractx.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerID = customerID
	return nil
}

// Deliver writes one result to the socket, retrying transient failures a
// bounded number of times with a fixed backoff. A close error is permanent
// and reported as ErrClosed.
func (s *Session) Deliver(result contractx.TurnResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		err := s.conn.WriteJSON(result)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			s.closed = true
			return fmt.Errorf("%w: %v", ErrClosed, err)
		}
		lastErr = err
		s.logger.Warn().Err(err).
			Str("session_id", s.ID).
			Int("attempt", attempt).
			Msg("delivery failed, retrying")
		if attempt < s.attempts {
			s.sleep(s.backoff)
		}
	}
	return fmt.Errorf("session: deliver after %d attempts: %w", s.attempts, lastErr)
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

func isPermanent(err error) bool {
	if errors.Is(err, websocket.ErrCloseSent) {
		return true
	}
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr)
}
