package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSettings(t *testing.T) {
	t.Run("uses defaults when nothing is configured", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("UPREBASE_LOG_FILE", "")

		v := New()
		require.NoError(t, Load(v, ""))

		settings := FromViper(v)
		require.Equal(t, DefaultRemote, settings.Remote)
		require.Empty(t, settings.Base)
		require.Equal(t, filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa"), settings.SSHKey)
		require.False(t, settings.InsecureIgnoreHostKey)
		require.Equal(t, filepath.Join(os.Getenv("HOME"), ".uprebase", "logs", "uprebase.log"), settings.LogFile)
	})

	t.Run("reads the config file in the home directory", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		err := os.WriteFile(filepath.Join(home, ".uprebase.yaml"), []byte(`remote: upstream
base: develop
ssh:
  key: ~/.ssh/work_ed25519
  insecure_ignore_host_key: true
`), 0600)
		require.NoError(t, err)

		v := New()
		require.NoError(t, Load(v, ""))

		settings := FromViper(v)
		require.Equal(t, "upstream", settings.Remote)
		require.Equal(t, "develop", settings.Base)
		require.Equal(t, filepath.Join(home, ".ssh", "work_ed25519"), settings.SSHKey)
		require.True(t, settings.InsecureIgnoreHostKey)
	})

	t.Run("environment overrides the config file", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		cfg := filepath.Join(home, "custom.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("remote: upstream\n"), 0600))
		t.Setenv("UPREBASE_REMOTE", "fork")
		t.Setenv("UPREBASE_SSH_PASSPHRASE", "hunter2")
		t.Setenv("UPREBASE_NO_COLOR", "true")

		v := New()
		require.NoError(t, Load(v, cfg))

		settings := FromViper(v)
		require.Equal(t, "fork", settings.Remote)
		require.Equal(t, "hunter2", settings.SSHPassphrase)
		require.True(t, settings.NoColor)
	})

	t.Run("fails when an explicit config file is missing", func(t *testing.T) {
		v := New()
		err := Load(v, filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("builds ssh credentials from settings", func(t *testing.T) {
		settings := Settings{SSHKey: "/keys/id_ed25519", SSHPassphrase: "pw"}
		creds := settings.Credentials()
		require.Equal(t, "/keys/id_ed25519", creds.PrivateKeyPath)
		require.Equal(t, "/keys/id_ed25519.pub", creds.PublicKeyPath())
		require.Equal(t, "pw", creds.Passphrase)
	})
}
