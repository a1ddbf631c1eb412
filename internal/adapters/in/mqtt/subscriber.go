// Package mqtt ingests driver positions published by mobile devices on
//
//	tenants/{tenantId}/drivers/{driverId}/location
//
// with a JSON body {"latitude": .., "longitude": ..}.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"logistics/internal/core/application/usecases/commands"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/tracking"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	DefaultLocationTopic = "tenants/+/drivers/+/location"

	qos            = 1
	handleTimeout  = 5 * time.Second
	connectTimeout = 10 * time.Second
	disconnectWait = 250
)

type LocationHandler interface {
	Handle(ctx context.Context, command commands.UpdateDriverLocationCommand) error
}

type Config struct {
	BrokerURL string
	ClientID  string
	Topic     string
}

type locationMessage struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Subscriber turns location messages into UpdateDriverLocation commands.
// Malformed messages are logged and dropped.
type Subscriber struct {
	client  paho.Client
	topic   string
	handler LocationHandler
	logger  *slog.Logger
}

func NewSubscriber(cfg Config, handler LocationHandler, logger *slog.Logger) *Subscriber {
	s := &Subscriber{
		topic:   cfg.Topic,
		handler: handler,
		logger:  logger.With("component", "mqtt_location_subscriber"),
	}
	if s.topic == "" {
		s.topic = DefaultLocationTopic
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(s.subscribe).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			s.logger.Warn("mqtt connection lost", "error", err)
		})
	s.client = paho.NewClient(opts)
	return s
}

// Start connects to the broker. The subscription is (re)established on
// every successful connect.
func (s *Subscriber) Start() error {
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect: timed out after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (s *Subscriber) Stop() {
	if s.client.IsConnected() {
		s.client.Unsubscribe(s.topic).WaitTimeout(time.Second)
	}
	s.client.Disconnect(disconnectWait)
	s.logger.Info("mqtt subscriber stopped")
}

func (s *Subscriber) subscribe(c paho.Client) {
	token := c.Subscribe(s.topic, qos, s.OnMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		s.logger.Error("mqtt subscribe failed", "topic", s.topic, "error", err)
		return
	}
	s.logger.Info("mqtt subscribed", "topic", s.topic)
}

// OnMessage is the paho message callback.
func (s *Subscriber) OnMessage(_ paho.Client, msg paho.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := s.handle(ctx, msg.Topic(), msg.Payload()); err != nil {
		s.logger.WarnContext(ctx, "location message dropped", "topic", msg.Topic(), "error", err)
	}
}

func (s *Subscriber) handle(ctx context.Context, topic string, payload []byte) error {
	tenantID, driverID, err := parseTopic(topic)
	if err != nil {
		return err
	}

	var body locationMessage
	if err = json.Unmarshal(payload, &body); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if body.Latitude == nil || body.Longitude == nil {
		return fmt.Errorf("payload must carry latitude and longitude")
	}

	cmd, err := commands.NewUpdateDriverLocationCommand(driverID, tenantID, *body.Latitude, *body.Longitude, tracking.SourceMQTT)
	if err != nil {
		return err
	}
	return s.handler.Handle(ctx, cmd)
}

func parseTopic(topic string) (kernel.TenantID, kernel.UUID, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 5 || parts[0] != "tenants" || parts[2] != "drivers" || parts[4] != "location" {
		return "", kernel.UUID{}, fmt.Errorf("unexpected topic %q", topic)
	}
	tenantID, err := kernel.NewTenantID(parts[1])
	if err != nil {
		return "", kernel.UUID{}, err
	}
	driverID, err := kernel.UUIDFromString(parts[3])
	if err != nil {
		return "", kernel.UUID{}, err
	}
	return tenantID, driverID, nil
}
