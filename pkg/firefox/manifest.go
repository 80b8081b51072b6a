package firefox

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// HostName is the native messaging host name the extension connects to.
	HostName = "foxconf"

	// DefaultExtensionID is the add-on id allowed to talk to the host.
	DefaultExtensionID = "foxconf@entrhq.dev"
)

// HostManifest is the native messaging host manifest Firefox reads.
type HostManifest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Path              string   `json:"path"`
	Type              string   `json:"type"`
	AllowedExtensions []string `json:"allowed_extensions"`
}

// NewHostManifest builds a stdio manifest for the host binary at path.
func NewHostManifest(path string, extensionIDs ...string) HostManifest {
	if len(extensionIDs) == 0 {
		extensionIDs = []string{DefaultExtensionID}
	}
	return HostManifest{
		Name:              HostName,
		Description:       "Native messaging host for foxconf",
		Path:              path,
		Type:              "stdio",
		AllowedExtensions: extensionIDs,
	}
}

// Validate checks the manifest fields Firefox requires.
func (m HostManifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest name is required")
	}
	if !filepath.IsAbs(m.Path) {
		return fmt.Errorf("host path must be absolute, got %q", m.Path)
	}
	if m.Type != "stdio" {
		return fmt.Errorf("unsupported host type %q", m.Type)
	}
	if len(m.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one allowed extension is required")
	}
	return nil
}

// NativeHostsDir returns the per-user native messaging manifest directory.
// Windows has no per-user directory and relies on a registry key pointing at
// the manifest, so the manifest is placed under APPDATA.
func (l *Locator) NativeHostsDir() (string, error) {
	switch l.GOOS {
	case "windows":
		if l.AppData == "" {
			return "", fmt.Errorf("APPDATA is not set")
		}
		return filepath.Join(l.AppData, "Mozilla", "NativeMessagingHosts"), nil
	case "darwin":
		return filepath.Join(l.Home, "Library", "Application Support", "Mozilla", "NativeMessagingHosts"), nil
	default:
		return filepath.Join(l.Home, ".mozilla", "native-messaging-hosts"), nil
	}
}

// InstallHost writes the manifest as <dir>/<name>.json and returns its path.
func InstallHost(fs afero.Fs, dir string, m HostManifest) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(dir, m.Name+".json")
	if err := afero.WriteFile(fs, path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}
