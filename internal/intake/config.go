package intake

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/envutil"
)

const (
	DefaultStream = "followup:visitor_events"
	DefaultGroup  = "followup-notes"

	payloadField = "payload"
)

type Config struct {
	Stream      string
	Group       string
	Consumer    string
	Concurrency int
	BatchSize   int64
	Block       time.Duration
	// ReclaimIdle is how long a message may sit unacked with another consumer
	// before this one takes it over.
	ReclaimIdle time.Duration
	MaxLen      int64
}

func ConfigFromEnv() Config {
	return Config{
		Stream:      envutil.String("INTAKE_STREAM", DefaultStream),
		Group:       envutil.String("INTAKE_GROUP", DefaultGroup),
		Consumer:    envutil.String("INTAKE_CONSUMER", ""),
		Concurrency: envutil.Int("INTAKE_CONCURRENCY", 4),
		BatchSize:   int64(envutil.Int("INTAKE_BATCH_SIZE", 10)),
		Block:       envutil.Millis("INTAKE_BLOCK_MS", 5000),
		ReclaimIdle: envutil.Seconds("INTAKE_RECLAIM_IDLE_SECONDS", 300),
		MaxLen:      int64(envutil.Int("INTAKE_MAX_LEN", 100000)),
	}
}

func (c Config) normalized() Config {
	if c.Stream == "" {
		c.Stream = DefaultStream
	}
	if c.Group == "" {
		c.Group = DefaultGroup
	}
	if c.Consumer == "" {
		c.Consumer = "intake-" + ulid.Make().String()
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.BatchSize < 1 {
		c.BatchSize = 10
	}
	if c.Block <= 0 {
		c.Block = 5 * time.Second
	}
	return c
}
