package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/turn-features/segment"
)

// EnvPrefix prefixes environment overrides, e.g. TURNFEAT_WORKERS=8.
const EnvPrefix = "TURNFEAT"

type Pipeline struct {
	Name      string `mapstructure:"name" yaml:"name"`
	Version   string `mapstructure:"version" yaml:"version"`
	LogLvl    string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

type Segment struct {
	PauseThreshold  float64 `mapstructure:"pause_threshold" yaml:"pause_threshold"`
	GateOnThreshold bool    `mapstructure:"gate_on_threshold" yaml:"gate_on_threshold"`
}

type Aligner struct {
	Binary        string        `mapstructure:"binary" yaml:"binary"`
	Dictionary    string        `mapstructure:"dictionary" yaml:"dictionary"`
	AcousticModel string        `mapstructure:"acoustic_model" yaml:"acoustic_model"`
	OutputSubdir  string        `mapstructure:"output_subdir" yaml:"output_subdir"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Clean         bool          `mapstructure:"clean" yaml:"clean"`
	SingleSpeaker bool          `mapstructure:"single_speaker" yaml:"single_speaker"`
}

type TextGrid struct {
	NormalizeNFC bool `mapstructure:"normalize_nfc" yaml:"normalize_nfc"`
}

type Output struct {
	CSV        bool   `mapstructure:"csv" yaml:"csv"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	Manifest   bool   `mapstructure:"manifest" yaml:"manifest"`
}

type Sentry struct {
	DSN         string `mapstructure:"dsn" yaml:"dsn"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

type Root struct {
	Pipeline Pipeline `mapstructure:"pipeline" yaml:"pipeline"`
	Segment  Segment  `mapstructure:"segment" yaml:"segment"`
	Aligner  Aligner  `mapstructure:"aligner" yaml:"aligner"`
	TextGrid TextGrid `mapstructure:"textgrid" yaml:"textgrid"`
	Workers  int      `mapstructure:"workers" yaml:"workers"`
	Output   Output   `mapstructure:"output" yaml:"output"`
	Sentry   Sentry   `mapstructure:"sentry" yaml:"sentry"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "turn-features")
	v.SetDefault("pipeline.version", "0.1.0")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")
	v.SetDefault("segment.pause_threshold", segment.DefaultPauseThreshold)
	v.SetDefault("segment.gate_on_threshold", false)
	v.SetDefault("aligner.binary", "mfa")
	v.SetDefault("aligner.dictionary", "korean_mfa")
	v.SetDefault("aligner.acoustic_model", "korean_mfa")
	v.SetDefault("aligner.output_subdir", "aligned")
	v.SetDefault("aligner.timeout", 2*time.Hour)
	v.SetDefault("aligner.clean", true)
	v.SetDefault("aligner.single_speaker", true)
	v.SetDefault("textgrid.normalize_nfc", true)
	v.SetDefault("workers", 4)
	v.SetDefault("output.csv", true)
	v.SetDefault("output.sqlite_path", "")
	v.SetDefault("output.manifest", true)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
}

// Load reads the config file at path, or when path is empty the first of
// config/<CONFIG_ENV>/config.yaml and config.yaml that exists. A missing
// file is not an error; defaults and TURNFEAT_* overrides still apply.
func Load(path string) (*Root, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = guess()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &cfg, nil
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	for _, p := range []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Dump writes cfg as YAML.
func Dump(w io.Writer, cfg *Root) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
