package firefox

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyINI = `[General]
StartWithLastProfile=1

[Profile1]
Name=work
IsRelative=1
Path=Profiles/work.abcd

[Profile0]
Name=default
IsRelative=1
Path=Profiles/xyz.default
Default=1
`

const modernINI = `[Install4F96D1932A9F858E]
Default=Profiles/abc.default-release
Locked=1

[Profile1]
Name=default
IsRelative=1
Path=Profiles/old.default
Default=1

[Profile0]
Name=default-release
IsRelative=1
Path=Profiles/abc.default-release
`

func TestParseProfilesINI(t *testing.T) {
	sections, err := ParseProfilesINI(strings.NewReader(legacyINI))
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, "General", sections[0].Name)
	assert.Equal(t, "Profiles/work.abcd", sections[1].Values["Path"])
	assert.Equal(t, "1", sections[2].Values["Default"])
}

func TestDefaultProfilePath(t *testing.T) {
	dataDir := filepath.Join("/home", "me", ".mozilla", "firefox")

	tests := []struct {
		name    string
		ini     string
		want    string
		wantErr bool
	}{
		{
			name: "legacy default flag on last section",
			ini:  legacyINI,
			want: filepath.Join(dataDir, "Profiles", "xyz.default"),
		},
		{
			name: "install section wins",
			ini:  modernINI,
			want: filepath.Join(dataDir, "Profiles", "abc.default-release"),
		},
		{
			name: "absolute path",
			ini:  "[Profile0]\nName=x\nIsRelative=0\nPath=/opt/profiles/x\nDefault=1\n",
			want: "/opt/profiles/x",
		},
		{
			name: "single profile without default flag",
			ini:  "[Profile0]\nName=x\nIsRelative=1\nPath=x.default\n",
			want: filepath.Join(dataDir, "x.default"),
		},
		{
			name:    "no profiles",
			ini:     "[General]\nStartWithLastProfile=1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections, err := ParseProfilesINI(strings.NewReader(tt.ini))
			require.NoError(t, err)

			got, err := DefaultProfilePath(sections, dataDir)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoProfile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocator(t *testing.T) {
	t.Run("linux default profile", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/home/me/.mozilla/firefox/profiles.ini", []byte(legacyINI), 0644))

		l := &Locator{FS: fs, GOOS: "linux", Home: "/home/me"}
		got, err := l.DefaultProfile()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/home/me/.mozilla/firefox", "Profiles", "xyz.default"), got)
	})

	t.Run("missing profiles.ini", func(t *testing.T) {
		l := &Locator{FS: afero.NewMemMapFs(), GOOS: "linux", Home: "/home/me"}
		_, err := l.DefaultProfile()
		assert.ErrorIs(t, err, ErrNoProfile)
	})

	t.Run("platform directories", func(t *testing.T) {
		tests := []struct {
			goos     string
			firefox  string
			hostsDir string
		}{
			{"linux", filepath.Join("/home/me", ".mozilla", "firefox"), filepath.Join("/home/me", ".mozilla", "native-messaging-hosts")},
			{"darwin", filepath.Join("/home/me", "Library", "Application Support", "Firefox"), filepath.Join("/home/me", "Library", "Application Support", "Mozilla", "NativeMessagingHosts")},
			{"windows", filepath.Join("/appdata", "Mozilla", "Firefox"), filepath.Join("/appdata", "Mozilla", "NativeMessagingHosts")},
		}
		for _, tt := range tests {
			l := &Locator{GOOS: tt.goos, Home: "/home/me", AppData: "/appdata"}
			dir, err := l.FirefoxDir()
			require.NoError(t, err)
			assert.Equal(t, tt.firefox, dir, tt.goos)

			hosts, err := l.NativeHostsDir()
			require.NoError(t, err)
			assert.Equal(t, tt.hostsDir, hosts, tt.goos)
		}
	})

	t.Run("windows without APPDATA", func(t *testing.T) {
		l := &Locator{GOOS: "windows"}
		_, err := l.FirefoxDir()
		assert.Error(t, err)
	})

	t.Run("data dir override", func(t *testing.T) {
		l := &Locator{GOOS: "linux", Home: "/home/me", DataDir: "/custom"}
		dir, err := l.FirefoxDir()
		require.NoError(t, err)
		assert.Equal(t, "/custom", dir)
	})
}

func TestInstallHost(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := NewHostManifest("/usr/local/bin/foxconf-host")

	path, err := InstallHost(fs, "/home/me/.mozilla/native-messaging-hosts", m)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/me/.mozilla/native-messaging-hosts", "foxconf.json"), path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	var got HostManifest
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, m, got)
	assert.Equal(t, []string{DefaultExtensionID}, got.AllowedExtensions)

	_, err = InstallHost(fs, "/tmp", NewHostManifest("relative/host"))
	assert.Error(t, err)
}
