package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/realtime"
)

const defaultRedisChannel = "shiftconsole:sse"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// envelope tags a message with the instance that published it. Forwarders skip
// their own messages since the local hub already delivered them.
type envelope struct {
	Origin  string              `json:"origin"`
	Message realtime.SSEMessage `json:"message"`
}

type redisBridge struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	origin  string
}

func NewRedisBridge(log *logger.Logger, cfg RedisConfig) (Bridge, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = defaultRedisChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	b := &redisBridge{
		log:     log.With("service", "RedisSSEBridge"),
		rdb:     rdb,
		channel: ch,
		origin:  uuid.NewString(),
	}
	b.log.Info("Redis SSE bridge connected", "addr", addr, "channel", ch)
	return b, nil
}

func (b *redisBridge) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis SSE bridge not initialized")
	}
	raw, err := json.Marshal(envelope{Origin: b.origin, Message: msg})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBridge) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis SSE bridge not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				msg, forward, err := decodeEnvelope(b.origin, m.Payload)
				if err != nil {
					b.log.Warn("bad redis SSE payload", "error", err)
					continue
				}
				if forward {
					onMsg(msg)
				}
			}
		}
	}()
	return nil
}

func (b *redisBridge) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

// decodeEnvelope reports whether a payload from another instance should reach
// the local hub.
func decodeEnvelope(origin, payload string) (realtime.SSEMessage, bool, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return realtime.SSEMessage{}, false, err
	}
	if env.Message.Channel == "" {
		return realtime.SSEMessage{}, false, fmt.Errorf("message without channel")
	}
	return env.Message, env.Origin != origin, nil
}

// RedisClient returns the client behind a redis bridge, or nil for any other
// bridge.
func RedisClient(b Bridge) *goredis.Client {
	if rb, ok := b.(*redisBridge); ok && rb != nil {
		return rb.rdb
	}
	return nil
}
