package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/alekLukanen/errs"
	"github.com/spf13/viper"

	"github.com/alekLukanen/BreweryMedallion/ingestion"
)

const (
	StorageBackendS3   = "s3"
	StorageBackendFile = "file"

	DefaultBucketName = "brewery-api"
	DefaultSourceURL  = ingestion.DefaultSourceURL
)

// Config aggregates the configuration of one job run.
type Config struct {
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Source   SourceConfig   `mapstructure:"source"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Lock     LockConfig     `mapstructure:"lock"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatasetConfig struct {
	Name           string `mapstructure:"name"`
	GroupAttribute string `mapstructure:"group_attribute"`
	TypeAttribute  string `mapstructure:"type_attribute"`
}

type SourceConfig struct {
	URL     string        `mapstructure:"url"`
	File    string        `mapstructure:"file"`
	PerPage int           `mapstructure:"per_page"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Backend      string `mapstructure:"backend"`
	Bucket       string `mapstructure:"bucket"`
	KeyPrefix    string `mapstructure:"key_prefix"`
	Root         string `mapstructure:"root"`
	Endpoint     string `mapstructure:"endpoint"`
	Region       string `mapstructure:"region"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`

	UploadPartSize int64 `mapstructure:"upload_part_size"`
}

type LockConfig struct {
	Address   string        `mapstructure:"address"`
	Password  string        `mapstructure:"password"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Expiry    time.Duration `mapstructure:"expiry"`
}

type PipelineConfig struct {
	Concurrent            bool `mapstructure:"concurrent"`
	CollectSilverFailures bool `mapstructure:"collect_silver_failures"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Name:           "breweries",
			GroupAttribute: "state",
			TypeAttribute:  "brewery_type",
		},
		Source: SourceConfig{
			URL:     DefaultSourceURL,
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Backend: StorageBackendS3,
			Bucket:  DefaultBucketName,
		},
		Lock: LockConfig{
			KeyPrefix: "brewery",
			Expiry:    10 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from brewery.yaml, when present, and from
// environment variables. Environment variables use the prefix "BREWERY" and
// the dot character in keys is replaced by an underscore. For example,
// "storage.bucket" becomes "BREWERY_STORAGE_BUCKET".
func Load(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("brewery")
		v.AddConfigPath(".")
	}
	return LoadWith(v, configFile != "")
}

// LoadWith unmarshals the configuration through an existing viper instance so
// command line flags bound to it take precedence over files and environment.
func LoadWith(v *viper.Viper, configFileRequired bool) (*Config, error) {
	cfg := DefaultConfig()

	v.SetEnvPrefix("BREWERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFileRequired || !errors.As(err, &notFound) {
			return nil, errs.Wrap(errs.NewStackError(err), ErrConfigRead)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.Wrap(errs.NewStackError(err), ErrConfigRead)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (obj *Config) Validate() error {
	switch obj.Storage.Backend {
	case StorageBackendS3:
	case StorageBackendFile:
		if obj.Storage.Root == "" {
			return errs.Wrap(errs.NewStackError(fmt.Errorf("storage.root is required for the file backend")), ErrConfigInvalid)
		}
	default:
		return errs.Wrap(errs.NewStackError(fmt.Errorf("unknown storage backend %q", obj.Storage.Backend)), ErrConfigInvalid)
	}
	if obj.Storage.Bucket == "" {
		return errs.Wrap(errs.NewStackError(fmt.Errorf("storage.bucket is required")), ErrConfigInvalid)
	}
	if obj.Source.URL == "" && obj.Source.File == "" {
		return errs.Wrap(errs.NewStackError(fmt.Errorf("source.url or source.file is required")), ErrConfigInvalid)
	}
	if obj.Source.PerPage < 0 {
		return errs.Wrap(errs.NewStackError(fmt.Errorf("source.per_page must not be negative")), ErrConfigInvalid)
	}
	return nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling. The current
// values of cfg become the viper defaults, so an unset command line flag
// never overrides them.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(append([]string{}, parts...), tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		v.SetDefault(strings.Join(key, "."), val.Field(i).Interface())
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
