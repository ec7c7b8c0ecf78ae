// Package config loads the process configuration via viper, with
// fsnotify-driven hot reload for the room rule defaults. This is a single
// process, so there is one configuration shape, not a per-node dispatch
// table.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"mahjong3p/internal/logging"
	"mahjong3p/internal/rules"
)

type LogConf struct {
	Level string `mapstructure:"level"`
}

type JwtConf struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // seconds
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"poolSize"`
}

type MongoConf struct {
	URL string `mapstructure:"url"`
	DB  string `mapstructure:"db"`
}

type NatsConf struct {
	URL string `mapstructure:"url"`
}

type HTTPConf struct {
	Addr string `mapstructure:"addr"`
}

// AppConfig is the root configuration document.
type AppConfig struct {
	NodeID string      `mapstructure:"nodeId"`
	Log    LogConf     `mapstructure:"log"`
	Jwt    JwtConf     `mapstructure:"jwt"`
	Redis  RedisConf   `mapstructure:"redis"`
	Mongo  MongoConf   `mapstructure:"mongo"`
	Nats   NatsConf    `mapstructure:"nats"`
	HTTP   HTTPConf    `mapstructure:"http"`
	Rules  rules.Config `mapstructure:"rules"`
}

var (
	mu      sync.RWMutex
	current AppConfig
)

// Load reads configFile and starts watching it for changes.
func Load(configFile string) (AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return AppConfig{}, fmt.Errorf("config: read %s: %w", configFile, err)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Rules.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("config: %w", err)
	}

	mu.Lock()
	current = cfg
	mu.Unlock()

	v.WatchConfig()
	v.OnConfigChange(func(in fsnotify.Event) {
		var reloaded AppConfig
		if err := v.Unmarshal(&reloaded); err != nil {
			logging.Warn("config: reload failed: %v", err)
			return
		}
		if err := reloaded.Rules.Validate(); err != nil {
			logging.Warn("config: reloaded rules invalid, keeping previous: %v", err)
			return
		}
		mu.Lock()
		current = reloaded
		mu.Unlock()
		logging.Info("config: reloaded from %s", in.Name)
	})

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := rules.Default()
	v.SetDefault("rules.players", d.Players)
	v.SetDefault("rules.wanOnly", d.WanOnly)
	v.SetDefault("rules.allowPeng", d.AllowPeng)
	v.SetDefault("rules.allowGang", d.AllowGang)
	v.SetDefault("rules.allowChi", d.AllowChi)
	v.SetDefault("rules.score.baseScore", d.Score.BaseScore)
	v.SetDefault("rules.score.maxScore", d.Score.MaxScore)
	v.SetDefault("rules.score.dealerMultiplier", d.Score.DealerMultiplier)
	v.SetDefault("rules.score.selfDrawBonus", d.Score.SelfDrawBonus)
	v.SetDefault("rules.turn.turnTimeLimit", d.Turn.TurnTimeLimit)
	v.SetDefault("rules.turn.actionTimeLimit", d.Turn.ActionTimeLimit)
	v.SetDefault("log.level", "info")
	v.SetDefault("http.addr", ":8080")
}

// Current returns the most recently loaded (or hot-reloaded) config.
func Current() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// RulesSnapshot is a convenience accessor for the room-rule defaults,
// consulted every time a new room is created.
func RulesSnapshot() rules.Config {
	return Current().Rules
}
