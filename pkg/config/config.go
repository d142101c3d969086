// Package config loads typed configuration structs from the environment,
// optionally seeded from a dotenv file. Struct fields use envconfig tags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	envFile  string
	flagOnce sync.Once
)

// MustNew is New, panicking on error. Wiring code in main uses this.
func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(fmt.Sprintf("config: load %T: %v", conf, err))
	}
	return conf
}

// New populates a T from process environment variables under prefix. An
// -env-file flag (or a ./.env file, when present) is exported into the
// environment first, so file settings and real env vars read identically.
func New[T any](prefix string) (*T, error) {
	if err := loadEnv(); err != nil {
		return nil, err
	}
	conf := new(T)
	if err := envconfig.Process(prefix, conf); err != nil {
		return nil, fmt.Errorf("config: process prefix %q: %w", prefix, err)
	}
	return conf, nil
}

func loadEnv() error {
	flagOnce.Do(func() {
		if flag.Lookup("env-file") == nil {
			flag.StringVar(&envFile, "env-file", "", "path to a dotenv file")
		}
		if !flag.Parsed() {
			flag.Parse()
		}
	})

	path := strings.TrimSpace(envFile)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if explicit {
			if err == nil {
				return fmt.Errorf("config: env file %s is a directory", path)
			}
			return fmt.Errorf("config: env file %s: %w", path, err)
		}
		// No default .env is fine.
		return nil
	}
	return exportDotenv(path)
}

// exportDotenv pushes every setting from the file into the real environment,
// uppercased, so envconfig sees one consistent source.
func exportDotenv(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	for key, value := range v.AllSettings() {
		name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := os.Setenv(name, fmt.Sprint(value)); err != nil {
			return fmt.Errorf("config: set %s: %w", name, err)
		}
	}
	return nil
}
