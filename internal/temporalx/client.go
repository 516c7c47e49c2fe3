package temporalx

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/api/workflowservice/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

// NewClient dials Temporal until cfg.DialMaxWait elapses. It returns a nil
// client without error when TEMPORAL_ADDRESS is unset.
func NewClient(log *logger.Logger, cfg Config) (temporalsdkclient.Client, error) {
	if !cfg.Enabled() {
		log.Warn("TEMPORAL_ADDRESS not set; durable note workflows disabled")
		return nil, nil
	}
	opts, err := clientOptions(log, cfg, cfg.Namespace)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	attempts := 0
	c, err := backoff.Retry(ctx, func() (temporalsdkclient.Client, error) {
		attempts++
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout(cfg))
		defer cancel()
		return temporalsdkclient.DialContext(dialCtx, opts)
	},
		backoff.WithBackOff(cfg.NewBackOff()),
		backoff.WithMaxElapsedTime(cfg.DialMaxWait),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Warn("Temporal not reachable; retrying", "address", cfg.Address, "namespace", cfg.Namespace, "wait_ms", wait.Milliseconds(), "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("temporal dial failed (address=%s namespace=%s): %w", cfg.Address, cfg.Namespace, err)
	}
	log.Info("Connected to Temporal", "address", cfg.Address, "namespace", cfg.Namespace, "attempts", attempts)

	if cfg.AutoRegisterNamespace {
		if err := EnsureNamespace(ctx, cfg, log); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

// EnsureNamespace registers cfg.Namespace when it does not exist. Hosted
// namespaces are provisioned out of band, so this is for local Temporal only.
func EnsureNamespace(ctx context.Context, cfg Config, log *logger.Logger) error {
	namespace := strings.TrimSpace(cfg.Namespace)
	if namespace == "" || !cfg.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// No namespace header on this client, otherwise Register is refused.
	opts, err := clientOptions(log, cfg, "")
	if err != nil {
		return err
	}
	nsClient, err := temporalsdkclient.NewNamespaceClient(opts)
	if err != nil {
		return fmt.Errorf("temporal namespace ensure: init namespace client: %w", err)
	}
	defer nsClient.Close()

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		err := registerIfMissing(ctx, nsClient, namespace, cfg.retentionPeriod())
		if err == nil {
			return struct{}{}, nil
		}
		if !isRetryableRPC(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(cfg.NewBackOff()),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Warn("Temporal namespace ensure retrying", "namespace", namespace, "wait_ms", wait.Milliseconds(), "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("temporal namespace ensure (namespace=%s): %w", namespace, err)
	}
	return nil
}

func registerIfMissing(ctx context.Context, nsClient temporalsdkclient.NamespaceClient, namespace string, retention time.Duration) error {
	_, err := nsClient.Describe(ctx, namespace)
	var nfe *serviceerror.NamespaceNotFound
	if !errors.As(err, &nfe) {
		return err
	}
	err = nsClient.Register(ctx, &workflowservice.RegisterNamespaceRequest{
		Namespace:                        namespace,
		Description:                      "visitor follow-up notes",
		WorkflowExecutionRetentionPeriod: durationpb.New(retention),
	})
	var already *serviceerror.NamespaceAlreadyExists
	if errors.As(err, &already) {
		return nil
	}
	return err
}

func clientOptions(log *logger.Logger, cfg Config, namespace string) (temporalsdkclient.Options, error) {
	opts := temporalsdkclient.Options{
		HostPort:  cfg.Address,
		Namespace: namespace,
		Logger:    log,
	}
	if cfg.hasTLS() {
		tlsCfg, err := loadTLSConfig(cfg)
		if err != nil {
			return opts, err
		}
		opts.ConnectionOptions.TLS = tlsCfg
	}
	return opts, nil
}

func dialTimeout(cfg Config) time.Duration {
	if cfg.DialTimeout <= 0 {
		return 5 * time.Second
	}
	return cfg.DialTimeout
}

func (c Config) hasTLS() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}

func loadTLSConfig(cfg Config) (*tls.Config, error) {
	if cfg.ClientCertPath == "" || cfg.ClientKeyPath == "" {
		return nil, fmt.Errorf("temporal tls: TEMPORAL_CLIENT_CERT_PATH and TEMPORAL_CLIENT_KEY_PATH must be set together")
	}
	cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
	if err != nil {
		return nil, fmt.Errorf("temporal tls: load client cert/key: %w", err)
	}
	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if cfg.ClientCAPath == "" {
		return tlsCfg, nil
	}
	pem, err := os.ReadFile(cfg.ClientCAPath)
	if err != nil {
		return nil, fmt.Errorf("temporal tls: read CA: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("temporal tls: invalid CA pem")
	}
	tlsCfg.RootCAs = pool
	return tlsCfg, nil
}

func isRetryableRPC(err error) bool {
	if err == nil {
		return false
	}
	s, ok := status.FromError(err)
	if !ok {
		return errors.Is(err, context.DeadlineExceeded)
	}
	switch s.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}
