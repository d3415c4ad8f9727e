package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"stackit.dev/uprebase/internal/git"
	"stackit.dev/uprebase/internal/tui"
)

// Config keys
const (
	KeyRemote                = "remote"
	KeyBase                  = "base"
	KeySSHKey                = "ssh.key"
	KeySSHPassphrase         = "ssh.passphrase"
	KeyInsecureIgnoreHostKey = "ssh.insecure_ignore_host_key"
	KeyLogFile               = "log.file"
	KeyNoColor               = "no_color"
)

// EnvPrefix is prepended to environment variable names, e.g. UPREBASE_SSH_KEY
const EnvPrefix = "UPREBASE"

// DefaultRemote is used when no remote is configured
const DefaultRemote = "origin"

// Settings is the resolved configuration for one run
type Settings struct {
	Remote                string
	Base                  string
	SSHKey                string
	SSHPassphrase         string
	InsecureIgnoreHostKey bool
	LogFile               string
	NoColor               bool
}

// New creates a viper instance with defaults and environment bindings
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyRemote, DefaultRemote)
	v.SetDefault(KeySSHKey, DefaultSSHKey())
	v.SetDefault(KeyInsecureIgnoreHostKey, false)
	v.SetDefault(KeyLogFile, tui.GetLogFilePath())

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file. An explicit cfgFile must exist; the default
// $HOME/.uprebase.yaml is optional.
func Load(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		// Use config file from the flag
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	// Search for config in home directory
	v.AddConfigPath(home)
	v.SetConfigType("yaml")
	v.SetConfigName(".uprebase")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// FromViper resolves settings from a loaded viper instance
func FromViper(v *viper.Viper) Settings {
	return Settings{
		Remote:                v.GetString(KeyRemote),
		Base:                  v.GetString(KeyBase),
		SSHKey:                expandHome(v.GetString(KeySSHKey)),
		SSHPassphrase:         v.GetString(KeySSHPassphrase),
		InsecureIgnoreHostKey: v.GetBool(KeyInsecureIgnoreHostKey),
		LogFile:               expandHome(v.GetString(KeyLogFile)),
		NoColor:               v.GetBool(KeyNoColor),
	}
}

// Credentials builds the ssh credential provider for fetches
func (s Settings) Credentials() *git.SSHKeyCredentials {
	return &git.SSHKeyCredentials{
		PrivateKeyPath:        s.SSHKey,
		Passphrase:            s.SSHPassphrase,
		InsecureIgnoreHostKey: s.InsecureIgnoreHostKey,
	}
}

// DefaultSSHKey returns ~/.ssh/id_rsa, or an empty string when the home
// directory is unknown.
func DefaultSSHKey() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "id_rsa")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
