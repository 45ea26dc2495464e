// Package publish delivers analysis results to NATS so downstream
// conversational services can react to new insights.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/habitlens/internal/analysis"
	"github.com/fyrsmithlabs/habitlens/internal/config"
	"github.com/fyrsmithlabs/habitlens/internal/logging"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// ErrNotConnected is returned when publishing without a live connection.
var ErrNotConnected = errors.New("nats connection not available")

// Message headers.
const (
	HeaderResultID    = "Habitlens-Result-Id"
	HeaderContentType = "Content-Type"
)

const anonymousSubject = "anonymous"

// Publisher sends each result to <prefix>.<user_id>.
type Publisher struct {
	nc      *nats.Conn
	prefix  string
	timeout time.Duration
	owned   bool
}

// New publishes on an existing connection. The caller keeps ownership of nc.
func New(nc *nats.Conn, prefix string, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{nc: nc, prefix: strings.TrimSuffix(prefix, "."), timeout: timeout}
}

// Connect dials cfg.NATSURL. Connection state changes are logged.
func Connect(cfg config.PublishConfig, logger *logging.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx := context.Background()

	opts := []nats.Option{
		nats.Name("habitlens"),
		nats.Timeout(cfg.Timeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn(ctx, "nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info(ctx, "nats reconnected", zap.String("url", nc.ConnectedUrlRedacted()))
		}),
	}
	if cfg.Token.IsSet() {
		opts = append(opts, nats.Token(cfg.Token.Value()))
	}

	nc, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	p := New(nc, cfg.SubjectPrefix, cfg.Timeout)
	p.owned = true
	return p, nil
}

// Subject returns the subject a result for userID is published on.
func (p *Publisher) Subject(userID string) string {
	return p.prefix + "." + subjectToken(userID)
}

// subjectToken makes userID safe as a single subject token.
func subjectToken(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return anonymousSubject
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '.' || r == '*' || r == '>':
			return '_'
		case r <= ' ' || r == 0x7f:
			return '_'
		}
		return r
	}, userID)
}

// Publish sends res as JSON and waits for the server to acknowledge the
// flush, bounded by ctx or the configured timeout.
func (p *Publisher) Publish(ctx context.Context, res *analysis.Result) error {
	if p == nil || p.nc == nil || !p.nc.IsConnected() {
		return ErrNotConnected
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	msg := nats.NewMsg(p.Subject(res.UserID))
	msg.Data = data
	msg.Header.Set(HeaderResultID, res.ID)
	msg.Header.Set(HeaderContentType, "application/json")

	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publishing to %s: %w", msg.Subject, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing nats connection: %w", err)
	}
	return nil
}

// Close drains the connection if Connect opened it.
func (p *Publisher) Close() error {
	if p == nil || p.nc == nil || !p.owned {
		return nil
	}
	return p.nc.Drain()
}

var _ analysis.Publisher = (*Publisher)(nil)
