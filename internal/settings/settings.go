// Package settings reads the tunables shared by the pos service and posctl.
// Malformed values fall back to their default and are logged; a bad tunable
// never stops the process.
package settings

import (
	"strconv"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
)

const (
	SequenceMongo = "mongo"
	SequenceRedis = "redis"
)

// Source is the read side of *apt.Config used here.
type Source interface {
	GetStringOrDef(key, def string) string
}

type Settings struct {
	LogLevel string

	NATSURL         string
	KitchenDurable  bool
	KitchenStream   string
	KitchenConsumer string

	SequenceBackend string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	Location          *time.Location
	NumberingAttempts int
	NumberingBackoff  time.Duration

	StaleAfter     time.Duration
	SeedingEnabled bool
}

func Load(src Source, logger apt.Logger) Settings {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	r := reader{src: src, logger: logger}

	return Settings{
		LogLevel: src.GetStringOrDef("log.level", "info"),

		NATSURL:         src.GetStringOrDef("nats.url", "nats://localhost:4222"),
		KitchenDurable:  r.boolValue("nats.kitchen.durable", true),
		KitchenStream:   src.GetStringOrDef("nats.kitchen.stream", "POS_KITCHEN"),
		KitchenConsumer: src.GetStringOrDef("nats.kitchen.consumer", "pos-order-core"),

		SequenceBackend: r.backend("sequence.backend"),
		RedisAddr:       src.GetStringOrDef("redis.addr", "localhost:6379"),
		RedisPassword:   src.GetStringOrDef("redis.password", ""),
		RedisDB:         r.intValue("redis.db", 0, 0),

		Location:          r.location("numbering.timezone"),
		NumberingAttempts: r.intValue("numbering.attempts", 3, 1),
		NumberingBackoff:  r.durationValue("numbering.backoff", 50*time.Millisecond),

		StaleAfter:     r.durationValue("reconcile.stale.after", 2*time.Hour),
		SeedingEnabled: r.boolValue("seeding.enabled", true),
	}
}

type reader struct {
	src    Source
	logger apt.Logger
}

func (r reader) raw(key string) string {
	return strings.TrimSpace(r.src.GetStringOrDef(key, ""))
}

func (r reader) fallback(key, value string, def interface{}) {
	r.logger.Info("invalid setting, using default", "key", key, "value", value, "default", def)
}

func (r reader) intValue(key string, def, floor int) int {
	v := r.raw(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < floor {
		r.fallback(key, v, def)
		return def
	}
	return n
}

func (r reader) durationValue(key string, def time.Duration) time.Duration {
	v := r.raw(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		r.fallback(key, v, def)
		return def
	}
	return d
}

func (r reader) boolValue(key string, def bool) bool {
	v := r.raw(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fallback(key, v, def)
		return def
	}
	return b
}

func (r reader) location(key string) *time.Location {
	v := r.raw(key)
	if v == "" || strings.EqualFold(v, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(v)
	if err != nil {
		r.fallback(key, v, "Local")
		return time.Local
	}
	return loc
}

func (r reader) backend(key string) string {
	v := strings.ToLower(r.raw(key))
	switch v {
	case "", SequenceMongo:
		return SequenceMongo
	case SequenceRedis:
		return SequenceRedis
	default:
		r.fallback(key, v, SequenceMongo)
		return SequenceMongo
	}
}
