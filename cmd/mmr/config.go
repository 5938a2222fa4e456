package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "MMR"

// Config is loaded from, in increasing priority, the config file, MMR_
// prefixed environment variables and the command line.
type Config struct {
	Store     string `mapstructure:"store"`
	Path      string `mapstructure:"path"`
	DSN       string `mapstructure:"dsn"`
	Table     string `mapstructure:"table"`
	Container string `mapstructure:"container"`
	Prefix    string `mapstructure:"prefix"`
	Hasher    string `mapstructure:"hasher"`
	Encoding  string `mapstructure:"encoding"`
	ID        string `mapstructure:"id"`
	LogLevel  string `mapstructure:"log-level"`
}

func addConfigFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Config file (yaml, json or toml)")
	fs.String("store", storeBolt, "Store backend: memory, leveldb, bolt, badger, postgres or azblob")
	fs.String("path", "mmr.db", "File or directory for the leveldb, bolt and badger stores")
	fs.String("dsn", "", "Postgres data source name")
	fs.String("table", "", "Postgres table name")
	fs.String("container", "merklelogs", "Blob container for the azblob store")
	fs.String("prefix", "", "Blob path prefix for the azblob store")
	fs.String("hasher", "sha256", "Hash function: sha256, keccak256, blake2b256 or mimc-bn254")
	fs.String("encoding", "string", "Value encoding: string or field-element")
	fs.String("id", "mmr", "Accumulator id, keys are namespaced by it")
	fs.String("log-level", "INFO", "Log level, NOOP disables logging")
}

func loadConfig(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	return cfg, nil
}
