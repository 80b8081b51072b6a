// Package download hands generated files to their destination: a directory,
// the Firefox profile, or the clipboard.
package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/afero"
)

// Adapter delivers a payload under a suggested filename. Download returns once
// the payload has been handed off, not once a user has acted on it.
type Adapter interface {
	Download(ctx context.Context, payload []byte, filename string) error
}

// Result describes where the last payload went.
type Result struct {
	Path  string
	Bytes int
}

// Reporter is implemented by adapters that can tell where the payload went.
type Reporter interface {
	LastResult() Result
}

// cleanFilename rejects names that would escape the target directory.
func cleanFilename(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	base := filepath.Base(name)
	if base != name || base == "." || base == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid filename %q", name)
	}
	return base, nil
}

// DirWriter writes payloads into a directory.
type DirWriter struct {
	fs   afero.Fs
	dir  string
	last Result
}

// NewDirWriter returns a writer targeting dir on fs.
func NewDirWriter(fs afero.Fs, dir string) *DirWriter {
	return &DirWriter{fs: fs, dir: dir}
}

// Download writes payload to <dir>/<filename>, replacing any existing file.
func (w *DirWriter) Download(ctx context.Context, payload []byte, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := cleanFilename(filename)
	if err != nil {
		return err
	}
	if err := w.fs.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", w.dir, err)
	}

	path := filepath.Join(w.dir, name)
	tempPath := path + ".tmp"
	if err := afero.WriteFile(w.fs, tempPath, payload, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tempPath, err)
	}
	if err := w.fs.Rename(tempPath, path); err != nil {
		w.fs.Remove(tempPath)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	w.last = Result{Path: path, Bytes: len(payload)}
	return nil
}

// LastResult reports the last written file.
func (w *DirWriter) LastResult() Result {
	return w.last
}

// ProfileLocator resolves the directory of the default browser profile.
type ProfileLocator interface {
	DefaultProfile() (string, error)
}

// ProfileWriter writes payloads into the default browser profile directory,
// which is resolved on every call.
type ProfileWriter struct {
	fs      afero.Fs
	locator ProfileLocator
	last    Result
}

// NewProfileWriter returns a writer targeting the located profile.
func NewProfileWriter(fs afero.Fs, locator ProfileLocator) *ProfileWriter {
	return &ProfileWriter{fs: fs, locator: locator}
}

// Download writes payload into the profile directory.
func (w *ProfileWriter) Download(ctx context.Context, payload []byte, filename string) error {
	dir, err := w.locator.DefaultProfile()
	if err != nil {
		return err
	}
	inner := NewDirWriter(w.fs, dir)
	if err := inner.Download(ctx, payload, filename); err != nil {
		return err
	}
	w.last = inner.LastResult()
	return nil
}

// LastResult reports the last written file.
func (w *ProfileWriter) LastResult() Result {
	return w.last
}

// ClipboardWriter copies payloads to the system clipboard. The filename is
// only reported back.
type ClipboardWriter struct {
	write       func(string) error
	unsupported bool
	last        Result
}

// NewClipboardWriter returns a writer using the system clipboard.
func NewClipboardWriter() *ClipboardWriter {
	return &ClipboardWriter{write: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

// Download copies payload to the clipboard.
func (w *ClipboardWriter) Download(ctx context.Context, payload []byte, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.unsupported || w.write == nil {
		return fmt.Errorf("clipboard is not available on this system")
	}
	if err := w.write(string(payload)); err != nil {
		return fmt.Errorf("failed to copy %s to clipboard: %w", filename, err)
	}
	w.last = Result{Path: "clipboard:" + filename, Bytes: len(payload)}
	return nil
}

// LastResult reports the last copied payload.
func (w *ClipboardWriter) LastResult() Result {
	return w.last
}
