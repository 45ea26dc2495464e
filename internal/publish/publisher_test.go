package publish

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fyrsmithlabs/habitlens/internal/analysis"
	"github.com/fyrsmithlabs/habitlens/internal/config"
	"github.com/fyrsmithlabs/habitlens/internal/insight"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestNATSServer starts an embedded NATS server for testing.
func startTestNATSServer(t *testing.T, token string) *natsserver.Server {
	t.Helper()
	opts := &natsserver.Options{
		Host:          "127.0.0.1",
		Port:          -1,
		NoLog:         true,
		NoSigs:        true,
		Authorization: token,
	}

	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()
	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})
	return server
}

func sampleResult(userID string) *analysis.Result {
	return &analysis.Result{
		ID:          "4f1c2d9e-0000-4000-8000-000000000001",
		UserID:      userID,
		GeneratedAt: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
		Records:     analysis.RecordCounts{Memories: 3},
		Report: insight.Report{
			Patterns:    []insight.PatternInsight{},
			Predictions: []insight.PredictiveInsight{},
			Prompts:     []string{"I noticed you often feel low energy on tuesdays."},
		},
	}
}

func TestSubject(t *testing.T) {
	p := New(nil, "habitlens.insights.", 0)
	assert.Equal(t, "habitlens.insights.user-1", p.Subject("user-1"))
	assert.Equal(t, "habitlens.insights.anonymous", p.Subject("  "))
	assert.Equal(t, "habitlens.insights.a_b_c_d_e", p.Subject("a.b*c>d e"))
}

func TestPublisher_Publish(t *testing.T) {
	server := startTestNATSServer(t, "")
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	sub, err := nc.SubscribeSync("habitlens.insights.>")
	require.NoError(t, err)

	p := New(nc, "habitlens.insights", time.Second)
	require.NoError(t, p.Publish(context.Background(), sampleResult("user.7")))

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "habitlens.insights.user_7", msg.Subject)
	assert.Equal(t, "4f1c2d9e-0000-4000-8000-000000000001", msg.Header.Get(HeaderResultID))
	assert.Equal(t, "application/json", msg.Header.Get(HeaderContentType))

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, "user.7", got["user_id"])
	assert.Equal(t, []any{"I noticed you often feel low energy on tuesdays."}, got["prompts"])

	// Not owned: Close leaves the caller's connection open.
	require.NoError(t, p.Close())
	assert.True(t, nc.IsConnected())
}

func TestPublisher_NotConnected(t *testing.T) {
	var nilPub *Publisher
	assert.ErrorIs(t, nilPub.Publish(context.Background(), sampleResult("u")), ErrNotConnected)
	assert.ErrorIs(t, New(nil, "x", 0).Publish(context.Background(), sampleResult("u")), ErrNotConnected)

	server := startTestNATSServer(t, "")
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	nc.Close()

	assert.ErrorIs(t, New(nc, "x", 0).Publish(context.Background(), sampleResult("u")), ErrNotConnected)
}

func TestConnect_WithToken(t *testing.T) {
	server := startTestNATSServer(t, "s3cret")

	cfg := config.Default().Publish
	cfg.NATSURL = server.ClientURL()
	cfg.Timeout = 2 * time.Second

	_, err := Connect(cfg, nil)
	require.Error(t, err, "missing token is rejected")

	cfg.Token = config.Secret("s3cret")
	p, err := Connect(cfg, nil)
	require.NoError(t, err)

	watcher, err := nats.Connect(server.ClientURL(), nats.Token("s3cret"))
	require.NoError(t, err)
	defer watcher.Close()
	sub, err := watcher.SubscribeSync(p.Subject("user-1"))
	require.NoError(t, err)
	require.NoError(t, watcher.Flush())

	require.NoError(t, p.Publish(context.Background(), sampleResult("user-1")))
	_, err = sub.NextMsg(5 * time.Second)
	require.NoError(t, err)

	require.NoError(t, p.Close())
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := config.Default().Publish
	cfg.NATSURL = "nats://127.0.0.1:1"
	cfg.Timeout = 200 * time.Millisecond

	_, err := Connect(cfg, nil)
	assert.Error(t, err)
}

func TestPublisher_WithService(t *testing.T) {
	server := startTestNATSServer(t, "")
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	sub, err := nc.SubscribeSync("habitlens.insights.*")
	require.NoError(t, err)

	e, err := insight.NewEngine()
	require.NoError(t, err)
	svc := analysis.NewService(e, analysis.WithPublisher(New(nc, "habitlens.insights", time.Second)))

	res, err := svc.Analyze(context.Background(), insight.Document{UserID: "user-9"})
	require.NoError(t, err)

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "habitlens.insights.user-9", msg.Subject)
	assert.Equal(t, res.ID, msg.Header.Get(HeaderResultID))
}
