// Package firefox locates Firefox profile directories and installs the
// native messaging host manifest that lets the extension reach foxconf-host.
package firefox

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

// ErrNoProfile is returned when no default profile can be determined.
var ErrNoProfile = errors.New("could not find Firefox profile directory")

// Section is one [name] block of profiles.ini.
type Section struct {
	Name   string
	Values map[string]string
}

// ParseProfilesINI reads the sections of a profiles.ini file in order.
func ParseProfilesINI(r io.Reader) ([]Section, error) {
	var sections []Section
	var current *Section

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			sections = append(sections, Section{
				Name:   strings.TrimSpace(line[1 : len(line)-1]),
				Values: make(map[string]string),
			})
			current = &sections[len(sections)-1]
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || current == nil {
			continue
		}
		current.Values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read profiles.ini: %w", err)
	}
	return sections, nil
}

// DefaultProfilePath picks the default profile from parsed sections and
// resolves it against dataDir. [Install*] sections written by current Firefox
// releases win over the legacy Default=1 flag on [Profile*] sections; a lone
// profile is used when neither is present.
func DefaultProfilePath(sections []Section, dataDir string) (string, error) {
	var profiles []Section
	for _, s := range sections {
		if strings.HasPrefix(s.Name, "Profile") {
			profiles = append(profiles, s)
		}
	}

	for _, s := range sections {
		if strings.HasPrefix(s.Name, "Install") && s.Values["Default"] != "" {
			path := s.Values["Default"]
			relative := !filepath.IsAbs(path)
			for _, p := range profiles {
				if p.Values["Path"] == path {
					relative = p.Values["IsRelative"] != "0" && !filepath.IsAbs(path)
				}
			}
			return resolve(dataDir, path, relative), nil
		}
	}

	for _, p := range profiles {
		if p.Values["Default"] == "1" && p.Values["Path"] != "" {
			return resolveProfile(dataDir, p), nil
		}
	}

	if len(profiles) == 1 && profiles[0].Values["Path"] != "" {
		return resolveProfile(dataDir, profiles[0]), nil
	}
	return "", ErrNoProfile
}

func resolveProfile(dataDir string, p Section) string {
	path := p.Values["Path"]
	relative := p.Values["IsRelative"] != "0" && !filepath.IsAbs(path)
	return resolve(dataDir, path, relative)
}

func resolve(dataDir, path string, relative bool) string {
	path = filepath.FromSlash(path)
	if relative {
		return filepath.Join(dataDir, path)
	}
	return path
}

// Locator finds the Firefox data directory and default profile for the
// current user.
type Locator struct {
	FS afero.Fs

	// DataDir overrides platform detection when set.
	DataDir string

	GOOS    string
	Home    string
	AppData string
}

// NewLocator returns a Locator for the running platform and user.
func NewLocator() *Locator {
	home, _ := os.UserHomeDir()
	return &Locator{
		FS:      afero.NewOsFs(),
		GOOS:    runtime.GOOS,
		Home:    home,
		AppData: os.Getenv("APPDATA"),
	}
}

// FirefoxDir returns the directory holding profiles.ini.
func (l *Locator) FirefoxDir() (string, error) {
	if l.DataDir != "" {
		return l.DataDir, nil
	}
	switch l.GOOS {
	case "windows":
		if l.AppData == "" {
			return "", fmt.Errorf("APPDATA is not set")
		}
		return filepath.Join(l.AppData, "Mozilla", "Firefox"), nil
	case "darwin":
		return filepath.Join(l.Home, "Library", "Application Support", "Firefox"), nil
	default:
		return filepath.Join(l.Home, ".mozilla", "firefox"), nil
	}
}

// DefaultProfile returns the absolute path of the default profile directory.
func (l *Locator) DefaultProfile() (string, error) {
	dataDir, err := l.FirefoxDir()
	if err != nil {
		return "", err
	}

	f, err := l.FS.Open(filepath.Join(dataDir, "profiles.ini"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoProfile
		}
		return "", fmt.Errorf("failed to open profiles.ini: %w", err)
	}
	defer f.Close()

	sections, err := ParseProfilesINI(f)
	if err != nil {
		return "", err
	}
	return DefaultProfilePath(sections, dataDir)
}
