package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultSettingsFile is the launcher settings file name.
const DefaultSettingsFile = "TerasologyLauncherSettings.properties"

// EnvPrefix prefixes every environment override, e.g. GAME_LAUNCHER_GAME_DIR.
const EnvPrefix = "GAME_LAUNCHER"

// setting ties a settings file key to its flag and environment variables.
type setting struct {
	key  string   // settings file key
	flag string   // CLI flag name
	env  []string // environment variables, first non-empty wins
	get  func(*Config) string
	set  func(*Config, string)
}

var settings = []setting{
	{
		key:  "gameDirectory",
		flag: "game-dir",
		env:  []string{EnvPrefix + "_GAME_DIR"},
		get:  func(c *Config) string { return c.GameDir },
		set:  func(c *Config, v string) { c.GameDir = v },
	},
	{
		key:  "gameDataDirectory",
		flag: "data-dir",
		env:  []string{EnvPrefix + "_DATA_DIR"},
		get:  func(c *Config) string { return c.DataDir },
		set:  func(c *Config, v string) { c.DataDir = v },
	},
	{
		key:  "javaHome",
		flag: "java-home",
		env:  []string{EnvPrefix + "_JAVA_HOME", "JAVA_HOME"},
		get:  func(c *Config) string { return c.JavaHome },
		set:  func(c *Config, v string) { c.JavaHome = v },
	},
	{
		key:  "initialHeapSize",
		flag: "heap-min",
		env:  []string{EnvPrefix + "_HEAP_MIN"},
		get:  func(c *Config) string { return c.HeapMin },
		set:  func(c *Config, v string) { c.HeapMin = v },
	},
	{
		key:  "maxHeapSize",
		flag: "heap-max",
		env:  []string{EnvPrefix + "_HEAP_MAX"},
		get:  func(c *Config) string { return c.HeapMax },
		set:  func(c *Config, v string) { c.HeapMax = v },
	},
	{
		key:  "logLevel",
		flag: "game-log-level",
		env:  []string{EnvPrefix + "_GAME_LOG_LEVEL"},
		get:  func(c *Config) string { return c.GameLogLevel },
		set:  func(c *Config, v string) { c.GameLogLevel = v },
	},
	{
		key:  "userJavaParameters",
		flag: "java-params",
		env:  []string{EnvPrefix + "_JAVA_PARAMS"},
		get:  func(c *Config) string { return c.JavaParams },
		set:  func(c *Config, v string) { c.JavaParams = v },
	},
	{
		key:  "userGameParameters",
		flag: "game-params",
		env:  []string{EnvPrefix + "_GAME_PARAMS"},
		get:  func(c *Config) string { return c.GameParams },
		set:  func(c *Config, v string) { c.GameParams = v },
	},
	{
		key:  "readyMarker",
		flag: "marker",
		env:  []string{EnvPrefix + "_MARKER"},
		get:  func(c *Config) string { return c.MarkerPattern },
		set:  func(c *Config, v string) { c.MarkerPattern = v },
	},
}

// DefaultSettingsPath returns the settings file in the user config
// directory, falling back to the working directory.
func DefaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultSettingsFile
	}
	return filepath.Join(dir, "TerasologyLauncher", DefaultSettingsFile)
}

// newViper returns a viper instance that understands .properties files.
func newViper() (*viper.Viper, error) {
	codecs := viper.NewCodecRegistry()
	if err := codecs.RegisterCodec(PropertiesFormat, propertiesCodec{}); err != nil {
		return nil, fmt.Errorf("register properties codec: %w", err)
	}
	v := viper.NewWithOptions(viper.WithCodecRegistry(codecs))
	v.SetConfigType(PropertiesFormat)
	return v, nil
}

// LoadSettings fills the game settings of cfg. Precedence, highest first:
// flags changed in flags (may be nil), environment variables, the settings
// file, then the values already in cfg.
//
// A missing settings file is ignored unless its path was given explicitly.
func LoadSettings(cfg *Config, flags *pflag.FlagSet) error {
	v, err := newViper()
	if err != nil {
		return err
	}

	for _, s := range settings {
		v.SetDefault(s.key, s.get(cfg))
		if err := v.BindEnv(append([]string{s.key}, s.env...)...); err != nil {
			return fmt.Errorf("bind env for %s: %w", s.key, err)
		}
		if flags == nil {
			continue
		}
		if f := flags.Lookup(s.flag); f != nil {
			if err := v.BindPFlag(s.key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", s.flag, err)
			}
		}
	}

	path := cfg.SettingsPath
	explicit := path != ""
	if !explicit {
		path = DefaultSettingsPath()
	}
	// A first launch has no saved settings yet.
	if err := readSettingsFile(v, path); err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return err
	}

	for _, s := range settings {
		s.set(cfg, v.GetString(s.key))
	}

	cfg.DataDir, err = pathFromSetting(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("gameDataDirectory: %w", err)
	}
	cfg.GameDir, err = pathFromSetting(cfg.GameDir)
	if err != nil {
		return fmt.Errorf("gameDirectory: %w", err)
	}
	return nil
}

func readSettingsFile(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	defer f.Close()

	if err := v.ReadConfig(f); err != nil {
		return fmt.Errorf("read settings %s: %w", path, err)
	}
	return nil
}

// pathFromSetting accepts a plain path or a file: URI.
func pathFromSetting(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "file:") {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid file URI %q: %w", s, err)
	}
	p := u.Path
	if p == "" {
		// file:relative/path
		p = u.Opaque
	}
	if p == "" {
		return "", fmt.Errorf("file URI %q has no path", s)
	}
	// file:///C:/Games on Windows
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p), nil
}
