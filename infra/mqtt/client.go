package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/ConanSherry4869/voltage-control/core/model"
	"github.com/ConanSherry4869/voltage-control/core/telemetry"
	"github.com/ConanSherry4869/voltage-control/infra/logger"
)

// pahoClient is the subset of the Paho client the adapter uses; it exists
// so tests can substitute a fake.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Client bridges the control loop to an MQTT broker. It assembles the
// telemetry snapshot from the meter, BMS and PCS topics and publishes the
// per-tick power order, implementing both telemetry.Source and
// pcs.CommandSink.
type Client struct {
	cli pahoClient
	cfg Config
	log logger.Logger

	mu      sync.Mutex
	vMeas   float64
	soc     float64
	pMeas   float64
	vSeen   bool
	socSeen bool
	pSeen   bool
	lastSet [3]time.Time
}

// NewClient connects to the broker and subscribes to the three telemetry
// topics. Subscriptions are re-established on every (re)connect.
func NewClient(cfg Config) (*Client, error) {
	log := logger.New("mqtt")
	c := &Client{cfg: cfg, log: log}

	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(cli paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
		c.subscribe(cli)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	c.cli = cli
	return c, nil
}

func (c *Client) subscribe(cli pahoClient) {
	subs := []struct {
		topic string
		apply func(v float64)
	}{
		{c.cfg.VoltageTopic, func(v float64) { c.vMeas, c.vSeen = v, true; c.lastSet[0] = time.Now() }},
		{c.cfg.SOCTopic, func(v float64) { c.soc, c.socSeen = v, true; c.lastSet[1] = time.Now() }},
		{c.cfg.PowerTopic, func(v float64) { c.pMeas, c.pSeen = v, true; c.lastSet[2] = time.Now() }},
	}
	for _, s := range subs {
		apply := s.apply
		token := cli.Subscribe(s.topic, c.cfg.QoS, func(_ paho.Client, msg paho.Message) {
			var r Reading
			if err := json.Unmarshal(msg.Payload(), &r); err != nil {
				c.log.Warnf("bad payload on %s: %v", msg.Topic(), err)
				return
			}
			c.mu.Lock()
			apply(r.Value)
			c.mu.Unlock()
		})
		if token.Wait() && token.Error() != nil {
			c.log.Errorf("subscribe %s: %v", s.topic, token.Error())
		}
	}
}

// Read returns the latest assembled snapshot. Until all three fields have
// arrived, or once the oldest field exceeds MaxAgeMS, it reports
// telemetry.ErrNoData and the loop skips the tick.
func (c *Client) Read(ctx context.Context) (model.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.vSeen || !c.socSeen || !c.pSeen {
		return model.Snapshot{}, telemetry.ErrNoData
	}
	oldest := c.lastSet[0]
	for _, ts := range c.lastSet[1:] {
		if ts.Before(oldest) {
			oldest = ts
		}
	}
	if time.Since(oldest) > time.Duration(c.cfg.MaxAgeMS)*time.Millisecond {
		return model.Snapshot{}, fmt.Errorf("%w: oldest field from %s", telemetry.ErrNoData, oldest.Format(time.RFC3339))
	}
	return model.Snapshot{
		VMeas:     c.vMeas,
		SOC:       c.soc,
		PMeas:     c.pMeas,
		Timestamp: time.Now(),
	}, nil
}

// Send publishes the power order on the command topic. Each order carries a
// fresh command id so the PCS side can deduplicate.
func (c *Client) Send(ctx context.Context, cmd model.PowerCommand) error {
	order := PowerOrder{
		CommandID: uuid.NewString(),
		PowerKW:   cmd.PowerKW,
		Mode:      cmd.Mode.String(),
		Timestamp: cmd.Timestamp.UnixMilli(),
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	token := c.cli.Publish(c.cfg.CommandTopic, c.cfg.QoS, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish command: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() {
	if c.cli != nil && c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}
