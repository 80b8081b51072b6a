package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/entrhq/foxconf/pkg/download"
	"github.com/entrhq/foxconf/pkg/firefox"
	"github.com/entrhq/foxconf/pkg/gateway"
	"github.com/entrhq/foxconf/pkg/storage"
)

// OpenStorage builds the configured storage adapter. Adapters holding
// connections implement storage.Closer.
func (c *Config) OpenStorage(ctx context.Context) (storage.Adapter, error) {
	switch c.Storage.Backend {
	case BackendMemory:
		return storage.NewMemoryStore(), nil

	case BackendFile, "":
		path, err := c.storagePath("storage.json")
		if err != nil {
			return nil, err
		}
		store, err := storage.NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return store, nil

	case BackendSQLite:
		path, err := c.storagePath("storage.db")
		if err != nil {
			return nil, err
		}
		store, err := storage.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return store, nil

	case BackendRedis:
		opts, err := c.redisOptions()
		if err != nil {
			return nil, err
		}
		store, err := connectRedis(ctx, opts, c.Storage.Redis.Key)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("invalid storage backend: %s", c.Storage.Backend)
	}
}

func (c *Config) storagePath(name string) (string, error) {
	if c.Storage.Path != "" {
		return expandHome(c.Storage.Path)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (c *Config) redisOptions() (*redis.Options, error) {
	rc := c.Storage.Redis
	if strings.HasPrefix(rc.Addr, "redis://") || strings.HasPrefix(rc.Addr, "rediss://") {
		opts, err := redis.ParseURL(rc.Addr)
		if err != nil {
			return nil, fmt.Errorf("invalid storage.redis.addr: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	}, nil
}

// redisConnectRetries bounds connection attempts to a redis backend.
const redisConnectRetries = 3

// connectRedis retries the initial ping with exponential backoff so a
// briefly unavailable server does not fail the command outright.
func connectRedis(ctx context.Context, opts *redis.Options, key string) (*storage.RedisStore, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 200 * time.Millisecond
	expBackoff.MaxElapsedTime = 5 * time.Second
	expBackoff.Reset()

	var b backoff.BackOff = backoff.WithMaxRetries(expBackoff, redisConnectRetries)
	b = backoff.WithContext(b, ctx)

	var store *storage.RedisStore
	err := backoff.Retry(func() error {
		var err error
		store, err = storage.NewRedisStore(ctx, opts, key)
		return err
	}, b)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// DownloadAdapter builds the configured download adapter. The locator is
// only consulted for the profile target.
func (c *Config) DownloadAdapter(fs afero.Fs, locator download.ProfileLocator) (download.Adapter, error) {
	switch c.Output.Target {
	case TargetDir, "":
		dir, err := expandHome(c.Output.Dir)
		if err != nil {
			return nil, err
		}
		if dir == "" {
			dir = "."
		}
		return download.NewDirWriter(fs, dir), nil
	case TargetProfile:
		if locator == nil {
			return nil, fmt.Errorf("output target %q needs a profile locator", TargetProfile)
		}
		return download.NewProfileWriter(fs, locator), nil
	case TargetClipboard:
		return download.NewClipboardWriter(), nil
	default:
		return nil, fmt.Errorf("invalid output target: %s", c.Output.Target)
	}
}

// Locator returns a profile locator honouring firefox.data_dir.
func (c *Config) Locator(fs afero.Fs) (*firefox.Locator, error) {
	l := firefox.NewLocator()
	l.FS = fs
	if c.Firefox.DataDir != "" {
		dir, err := expandHome(c.Firefox.DataDir)
		if err != nil {
			return nil, err
		}
		l.DataDir = dir
	}
	return l, nil
}

// GatewayOptions maps the configuration onto gateway options.
func (c *Config) GatewayOptions() gateway.Options {
	return gateway.Options{
		BackupTimeout: c.Gateway.BackupTimeout,
		Filename:      c.Output.Filename,
		Comments:      c.Output.Comments,
	}
}
