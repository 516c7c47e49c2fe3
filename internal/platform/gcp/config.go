package gcp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/envutil"
)

type StorageMode string

const (
	StorageModeGCS         StorageMode = "gcs"
	StorageModeGCSEmulator StorageMode = "gcs_emulator"
)

type StoreConfig struct {
	Bucket       string
	Prefix       string
	Mode         StorageMode
	EmulatorHost string
}

func (c StoreConfig) Enabled() bool { return strings.TrimSpace(c.Bucket) != "" }

// StoreConfigFromEnv reads REPORTS_BUCKET and the object storage mode. An
// emulator host with no explicit mode selects the emulator.
func StoreConfigFromEnv() (StoreConfig, error) {
	cfg := StoreConfig{
		Bucket:       envutil.String("REPORTS_BUCKET", ""),
		Prefix:       strings.Trim(envutil.String("REPORTS_PREFIX", "followup-reports"), "/"),
		EmulatorHost: strings.TrimRight(envutil.String("STORAGE_EMULATOR_HOST", ""), "/"),
	}
	raw := envutil.String("OBJECT_STORAGE_MODE", "")
	switch StorageMode(strings.ToLower(raw)) {
	case "":
		cfg.Mode = StorageModeGCS
		if cfg.EmulatorHost != "" {
			cfg.Mode = StorageModeGCSEmulator
		}
	case StorageModeGCS:
		cfg.Mode = StorageModeGCS
	case StorageModeGCSEmulator:
		cfg.Mode = StorageModeGCSEmulator
	default:
		return cfg, fmt.Errorf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", raw, StorageModeGCS, StorageModeGCSEmulator)
	}
	return cfg, cfg.Validate()
}

func (c StoreConfig) Validate() error {
	if c.Mode != StorageModeGCSEmulator {
		return nil
	}
	if c.EmulatorHost == "" {
		return fmt.Errorf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", StorageModeGCSEmulator)
	}
	u, err := url.Parse(c.EmulatorHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", c.EmulatorHost)
	}
	return nil
}
