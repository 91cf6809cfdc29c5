package kafkaconsumer

import (
	"time"

	"github.com/IBM/sarama"
)

type Config struct {
	Brokers             []string
	Topic               string
	GroupID             string
	SessionTimeout      time.Duration
	Heartbeat           time.Duration
	RebalanceTimeout    time.Duration
	InitialOffsetOldest bool
	// pause between failed Consume rounds
	RetryBackoff time.Duration
}

// NewConfig fills the group timeouts with their defaults.
func NewConfig(brokers []string, topic, groupID string) Config {
	if topic == "" {
		topic = "vakuf-record-changes"
	}
	if groupID == "" {
		groupID = "vakuf-map"
	}
	return Config{
		Brokers:          brokers,
		Topic:            topic,
		GroupID:          groupID,
		SessionTimeout:   30 * time.Second,
		Heartbeat:        3 * time.Second,
		RebalanceTimeout: 30 * time.Second,
		// a restarted instance reloads on start anyway
		InitialOffsetOldest: false,
		RetryBackoff:        2 * time.Second,
	}
}

func (c Config) sarama() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.ClientID = c.GroupID
	cfg.Consumer.Group.Session.Timeout = c.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.RebalanceTimeout
	if c.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true
	cfg.Consumer.Return.Errors = false
	return cfg
}
