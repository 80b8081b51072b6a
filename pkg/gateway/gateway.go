// Package gateway is the request/response bridge between a settings front end
// and the privileged side that persists settings and writes user.js.
//
// Every request settles into a Response. Errors, including panics in a
// collaborator, are reported as failed responses and never cross the
// boundary.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"

	"github.com/entrhq/foxconf/pkg/catalog"
	"github.com/entrhq/foxconf/pkg/download"
	"github.com/entrhq/foxconf/pkg/logging"
	"github.com/entrhq/foxconf/pkg/prefs"
	"github.com/entrhq/foxconf/pkg/profile"
	"github.com/entrhq/foxconf/pkg/storage"
)

const (
	// DefaultBackupTimeout bounds the storage read of BACKUP_PROFILE.
	DefaultBackupTimeout = 5 * time.Second

	// DefaultFilename is the suggested name for generated preferences.
	DefaultFilename = "user.js"
)

// Options tune a Gateway. Zero values select defaults.
type Options struct {
	BackupTimeout time.Duration
	Filename      string
	// Comments adds a documentation block above each known setting.
	Comments bool
	// Now overrides the clock used in the user.js header.
	Now func() time.Time
}

// Gateway serves BACKUP_PROFILE, APPLY_SETTINGS and GET_PROFILE_DIR.
type Gateway struct {
	storage  storage.Adapter
	download download.Adapter
	catalog  *catalog.Catalog
	locator  download.ProfileLocator
	logger   *logging.Logger
	opts     Options

	applying atomic.Bool
}

// New creates a gateway over explicit collaborators. A nil catalog selects the
// built-in catalog and a nil logger discards output.
func New(store storage.Adapter, dl download.Adapter, c *catalog.Catalog, logger *logging.Logger, opts Options) *Gateway {
	if c == nil {
		c = catalog.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.BackupTimeout <= 0 {
		opts.BackupTimeout = DefaultBackupTimeout
	}
	if opts.Filename == "" {
		opts.Filename = DefaultFilename
	}
	return &Gateway{
		storage:  store,
		download: dl,
		catalog:  c,
		logger:   logger,
		opts:     opts,
	}
}

// WithLocator enables GET_PROFILE_DIR.
func (g *Gateway) WithLocator(l download.ProfileLocator) *Gateway {
	g.locator = l
	return g
}

// Handle processes one request and always returns a settled response.
func (g *Gateway) Handle(ctx context.Context, req Request) (resp Response) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			g.logger.Errorf("panic handling %s: %v\n%s", req.Type, r, debug.Stack())
			resp = failure(fmt.Errorf("internal error: %v", r))
		}
	}()

	var (
		data any
		err  error
	)
	switch req.Type {
	case KindBackupProfile:
		data, err = g.backupProfile(ctx)
	case KindApplySettings:
		data, err = g.applySettings(ctx, req.Settings)
	case KindGetProfileDir:
		data, err = g.profileDir()
	default:
		err = &UnknownRequestError{Type: string(req.Type)}
	}

	if err != nil {
		g.logger.Warnf("%s failed after %s: %v", req.Type, time.Since(start), err)
		return failure(err)
	}

	resp, err = success(data)
	if err != nil {
		g.logger.Errorf("%s: encoding response: %v", req.Type, err)
		return failure(err)
	}
	g.logger.Debugf("%s succeeded in %s", req.Type, time.Since(start))
	return resp
}

// Send implements Transport so a Gateway can be used in-process.
func (g *Gateway) Send(ctx context.Context, req Request) (Response, error) {
	return g.Handle(ctx, req), nil
}

type getAllResult struct {
	items map[string]any
	err   error
}

// backupProfile reads persisted settings, giving up after BackupTimeout even
// if the storage never returns.
func (g *Gateway) backupProfile(ctx context.Context) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.BackupTimeout)
	defer cancel()

	done := make(chan getAllResult, 1)
	go func() {
		items, err := g.storage.GetAll(ctx)
		done <- getAllResult{items: items, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, &StorageTimeoutError{Timeout: g.opts.BackupTimeout}
			}
			return nil, &AdapterError{Op: "storage read", Err: res.err}
		}
		if res.items == nil {
			res.items = map[string]any{}
		}
		return res.items, nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &StorageTimeoutError{Timeout: g.opts.BackupTimeout}
		}
		return nil, ctx.Err()
	}
}

func (g *Gateway) applySettings(ctx context.Context, raw []byte) (*ApplyResult, error) {
	entries, err := g.parseSettings(raw)
	if err != nil {
		return nil, err
	}

	if !g.applying.CompareAndSwap(false, true) {
		return nil, ErrApplyInProgress
	}
	defer g.applying.Store(false)

	var buf bytes.Buffer
	err = prefs.WriteEntries(&buf, entries, prefs.TextOptions{
		Catalog:  g.catalog,
		Comments: g.opts.Comments,
		Header:   true,
		Now:      g.opts.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("serializing preferences: %w", err)
	}

	if err := g.download.Download(ctx, buf.Bytes(), g.opts.Filename); err != nil {
		return nil, &AdapterError{Op: "download", Err: err}
	}

	items := make(map[string]any, len(entries))
	for _, e := range entries {
		items[e.ID] = e.Value.Interface()
	}
	if err := g.storage.Set(ctx, items); err != nil {
		return nil, &AdapterError{Op: "storage write", Err: err}
	}

	result := &ApplyResult{
		Filename: g.opts.Filename,
		Bytes:    buf.Len(),
		Settings: len(entries),
	}
	if r, ok := g.download.(download.Reporter); ok {
		result.Path = r.LastResult().Path
	}
	g.logger.Infof("applied %d settings (%d bytes) to %s", result.Settings, result.Bytes, result.Filename)
	return result, nil
}

// parseSettings accepts a JSON object of scalars. Ids the catalog knows must
// carry a value the setting accepts; other ids pass through unchanged.
func (g *Gateway) parseSettings(raw []byte) ([]profile.Entry, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &InvalidSettingsFormatError{Reason: "settings are required"}
	}
	if !gjson.ValidBytes(raw) {
		return nil, &InvalidSettingsFormatError{Reason: "settings are not valid JSON"}
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return nil, &InvalidSettingsFormatError{Reason: fmt.Sprintf("settings must be an object, got %s", describe(parsed))}
	}

	var (
		entries []profile.Entry
		seen    = map[string]int{}
		failed  error
	)
	parsed.ForEach(func(key, value gjson.Result) bool {
		id := key.String()
		if id == "" {
			failed = &InvalidSettingsFormatError{Reason: "setting id must not be empty"}
			return false
		}
		v, err := scalar(value)
		if err != nil {
			failed = &InvalidSettingsFormatError{Reason: fmt.Sprintf("setting %s", id), Err: err}
			return false
		}
		if s, ok := g.catalog.Lookup(id); ok {
			if err := s.Validate(v); err != nil {
				failed = &InvalidSettingsFormatError{Reason: fmt.Sprintf("setting %s", id), Err: err}
				return false
			}
		}
		if i, dup := seen[id]; dup {
			entries[i].Value = v
			return true
		}
		seen[id] = len(entries)
		entries = append(entries, profile.Entry{ID: id, Value: v})
		return true
	})
	if failed != nil {
		return nil, failed
	}
	return entries, nil
}

func scalar(v gjson.Result) (catalog.Value, error) {
	switch v.Type {
	case gjson.True, gjson.False:
		return catalog.Bool(v.Bool()), nil
	case gjson.Number:
		return catalog.FiniteNumber(v.Num)
	case gjson.String:
		return catalog.String(v.Str), nil
	default:
		return catalog.Value{}, fmt.Errorf("value must be a boolean, number or string, got %s", describe(v))
	}
}

func describe(v gjson.Result) string {
	switch {
	case v.Type == gjson.Null:
		return "null"
	case v.IsObject():
		return "object"
	case v.IsArray():
		return "array"
	default:
		return v.Type.String()
	}
}

func (g *Gateway) profileDir() (*ProfileDirResult, error) {
	if g.locator == nil {
		return nil, ErrNoLocator
	}
	dir, err := g.locator.DefaultProfile()
	if err != nil {
		return nil, &AdapterError{Op: "profile discovery", Err: err}
	}
	return &ProfileDirResult{Path: dir}, nil
}
