package temporalx

import (
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/envutil"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	AutoRegisterNamespace bool
	RetentionDays         int

	// DialTimeout bounds one dial attempt; DialMaxWait bounds all of them.
	DialTimeout  time.Duration
	DialMaxWait  time.Duration
	StartMaxWait time.Duration
	BackoffBase  time.Duration
	BackoffMax   time.Duration
}

func (c Config) Enabled() bool { return c.Address != "" }

func LoadConfig() Config {
	return Config{
		Address:   envutil.String("TEMPORAL_ADDRESS", ""),
		Namespace: envutil.String("TEMPORAL_NAMESPACE", "vecapp-ai"),
		TaskQueue: envutil.String("TEMPORAL_TASK_QUEUE", "followup-notes"),

		ClientCertPath: envutil.String("TEMPORAL_CLIENT_CERT_PATH", ""),
		ClientKeyPath:  envutil.String("TEMPORAL_CLIENT_KEY_PATH", ""),
		ClientCAPath:   envutil.String("TEMPORAL_CLIENT_CA_PATH", ""),

		AutoRegisterNamespace: envutil.Bool("TEMPORAL_AUTO_REGISTER_NAMESPACE", false),
		RetentionDays:         envutil.Int("TEMPORAL_NAMESPACE_RETENTION_DAYS", 7),

		DialTimeout:  envutil.Seconds("TEMPORAL_DIAL_TIMEOUT_SECONDS", 5),
		DialMaxWait:  envutil.Seconds("TEMPORAL_DIAL_MAX_WAIT_SECONDS", 60),
		StartMaxWait: envutil.Seconds("TEMPORAL_WORKER_START_MAX_WAIT_SECONDS", 60),
		BackoffBase:  envutil.Millis("TEMPORAL_BACKOFF_MS", 250),
		BackoffMax:   envutil.Millis("TEMPORAL_BACKOFF_MAX_MS", 5000),
	}
}

// NewBackOff is the reconnect schedule shared by dialing, namespace
// registration and worker start.
func (c Config) NewBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.BackoffBase
	if b.InitialInterval <= 0 {
		b.InitialInterval = 250 * time.Millisecond
	}
	b.MaxInterval = c.BackoffMax
	if b.MaxInterval < b.InitialInterval {
		b.MaxInterval = b.InitialInterval
	}
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	return b
}

func (c Config) retentionPeriod() time.Duration {
	days := c.RetentionDays
	if days < 1 {
		days = 7
	}
	if days > 365 {
		days = 365
	}
	return time.Duration(days) * 24 * time.Hour
}
