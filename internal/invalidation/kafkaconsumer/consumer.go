// Package kafkaconsumer applies record-change events from Kafka: the cached
// record set is dropped and the store reloads from the document store.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/mohammed-shakir/vakuf-map/internal/cache"
	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
	obs "github.com/mohammed-shakir/vakuf-map/internal/core/observability"
	"github.com/mohammed-shakir/vakuf-map/internal/debounce"
	"github.com/mohammed-shakir/vakuf-map/internal/invalidation"
	mylog "github.com/mohammed-shakir/vakuf-map/internal/logger"
)

// Reloader refetches the record set after the cache entry is gone.
type Reloader interface {
	Reload(ctx context.Context) []model.Record
}

type Deps struct {
	Logger *slog.Logger
	// event stream log; nil discards
	Zerolog *zerolog.Logger
	Cache   cache.Interface
	// key of the cached record set
	CacheKey string
	// events for other collections are ignored
	Collection string
	Store      Reloader
	Dedupe     *invalidation.Dedupe
	// coalesces bursts of events into one reload; 0 reloads per event
	ReloadDelay time.Duration
}

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	zlog   *zerolog.Logger
	cache  cache.Interface
	key    string
	coll   string
	store  Reloader
	dedupe *invalidation.Dedupe
	reload *debounce.Timer
}

func New(cfg Config, d Deps) *Consumer {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Dedupe == nil {
		d.Dedupe = invalidation.NewDedupe(0)
	}
	c := &Consumer{
		cfg:    cfg,
		logger: d.Logger,
		zlog:   d.Zerolog,
		cache:  d.Cache,
		key:    d.CacheKey,
		coll:   d.Collection,
		store:  d.Store,
		dedupe: d.Dedupe,
	}
	if d.ReloadDelay > 0 {
		c.reload = debounce.New(d.ReloadDelay)
	}
	return c
}

// Start consumes events until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	if c.cache == nil || c.store == nil {
		return errors.New("kafkaconsumer: missing dependencies (cache/store)")
	}
	if c.reload != nil {
		defer c.reload.Stop()
	}

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, c.cfg.sarama())
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne}
	c.logger.Info("kafka invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	backoff := c.cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	for {
		if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil && ctx.Err() == nil {
			obs.IncKafkaConsumerError("consume")
			c.logger.Error("consumer error", "err", err)
			c.event(ctx).Error().Err(err).
				Strs("brokers", c.cfg.Brokers).
				Str("topic", c.cfg.Topic).
				Msg("kafka consumer error")
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
		}
		if ctx.Err() != nil {
			c.logger.Info("kafka invalidation consumer shutting down")
			return nil
		}
	}
}

func (c *Consumer) event(ctx context.Context) *zerolog.Logger {
	return mylog.FromContext(mylog.WithComponent(ctx, "kafka_consumer"), c.zlog)
}

// ProcessOne applies a single record-change message. Undecodable or invalid
// messages are logged and skipped; cache failures are returned so the
// message is redelivered.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	start := time.Now()

	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncKafkaConsumerError("decode")
		c.event(ctx).Error().
			Str("kind", "decode").
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("kafka error")
		return nil
	}
	if err := ev.Validate(); err != nil {
		obs.IncKafkaConsumerError("invalid")
		c.logger.Warn("invalid record-change event", "err", err, "offset", msg.Offset)
		return nil
	}
	if c.coll != "" && ev.Collection != c.coll {
		c.logger.Debug("event for other collection (skipping)", "collection", ev.Collection)
		return nil
	}
	if !c.dedupe.Fresh(ev) {
		obs.ObserveInvalidation(ev.Op+"_stale", time.Since(start), nil)
		c.logger.Debug("stale record version (skipping)",
			"record_id", ev.RecordID, "version", ev.RecordVersion)
		return nil
	}

	if err := c.cache.Del(ctx, c.key); err != nil {
		obs.IncKafkaConsumerError("redis_del")
		obs.ObserveInvalidation(ev.Op, time.Since(start), err)
		c.event(ctx).Error().
			Str("kind", "redis_del").
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Str("key", c.key).
			Msg("kafka error")
		return fmt.Errorf("redis del: %w", err)
	}
	c.dedupe.Commit(ev)

	c.scheduleReload()

	obs.ObserveInvalidation(ev.Op, time.Since(start), nil)
	c.event(ctx).Info().
		Str("event", "invalidation").
		Str("op", ev.Op).
		Str("collection", ev.Collection).
		Str("record_id", ev.RecordID).
		Msg("record cache invalidated")
	return nil
}

func (c *Consumer) scheduleReload() {
	if c.reload == nil {
		recs := c.store.Reload(context.Background())
		c.logger.Debug("records reloaded", "count", len(recs))
		return
	}
	c.reload.Schedule(func() {
		recs := c.store.Reload(context.Background())
		c.logger.Debug("records reloaded", "count", len(recs))
	})
}
