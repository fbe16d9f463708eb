package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"gol-bench/internal/config"
	"gol-bench/internal/engine"
)

// MQTTSink publishes run reports as JSON to an MQTT broker under
// <topic>/<status>.
type MQTTSink struct {
	cfg    config.MQTTConfig
	client mqtt.Client
	log    *slog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	published uint64
	errors    uint64
	connected bool
}

// NewMQTTSink creates a sink for the configured broker. Call Connect before
// publishing.
func NewMQTTSink(cfg config.MQTTConfig, log *slog.Logger) *MQTTSink {
	if cfg.ClientID == "" {
		cfg.ClientID = "gol-bench-" + uuid.NewString()
	}
	s := newMQTTSink(cfg, nil, log)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		s.setConnected(true)
		s.log.Info("mqtt connection established", "broker", cfg.Broker, "client_id", cfg.ClientID)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		s.setConnected(false)
		s.log.Warn("mqtt connection lost, will auto-reconnect", "error", err, "broker", cfg.Broker)
	}
	s.client = mqtt.NewClient(opts)
	return s
}

func newMQTTSink(cfg config.MQTTConfig, client mqtt.Client, log *slog.Logger) *MQTTSink {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &MQTTSink{
		cfg:    cfg,
		client: client,
		log:    log.With("component", "mqtt"),
		now:    time.Now,
	}
}

// Connect establishes the broker connection.
func (s *MQTTSink) Connect(ctx context.Context) error {
	s.log.Info("connecting to mqtt broker", "broker", s.cfg.Broker)
	token := s.client.Connect()
	if err := wait(ctx, token, 5*time.Second); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}
	s.setConnected(true)
	return nil
}

// Publish sends r to <topic>/<status>.
func (s *MQTTSink) Publish(ctx context.Context, r engine.RunReport) error {
	if !s.isConnected() {
		s.countError()
		return fmt.Errorf("mqtt not connected")
	}
	payload, err := NewPayload(r, s.now()).JSON()
	if err != nil {
		s.countError()
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	topic := fmt.Sprintf("%s/%s", s.cfg.Topic, r.Status)

	token := s.client.Publish(topic, s.cfg.QoS, false, payload)
	if err := wait(ctx, token, s.cfg.Timeout); err != nil {
		s.countError()
		return fmt.Errorf("publish failed: %w", err)
	}

	s.mu.Lock()
	s.published++
	s.mu.Unlock()
	s.log.Debug("report published", "topic", topic, "qos", s.cfg.QoS, "size", len(payload))
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
		s.log.Info("mqtt disconnected")
	}
	s.setConnected(false)
	return nil
}

// Stats contains sink counters.
type Stats struct {
	Connected bool
	Published uint64
	Errors    uint64
}

// Stats returns sink counters.
func (s *MQTTSink) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Connected: s.connected, Published: s.published, Errors: s.errors}
}

func (s *MQTTSink) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

func (s *MQTTSink) isConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *MQTTSink) countError() {
	s.mu.Lock()
	s.errors++
	s.mu.Unlock()
}

// wait blocks until token completes, the timeout passes or ctx is done.
func wait(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return fmt.Errorf("timeout after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
