// Package config defines the typed configuration record recognized by the
// core (§6) and the viper-backed loader that resolves it from flags, env
// vars, and an optional config file, in that precedence order. Unknown
// keys are rejected at startup.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EntanglementConfig holds the probabilistic-matching parameters from §4.1.
type EntanglementConfig struct {
	TemporalDecay   float64 `mapstructure:"temporal_decay"`
	WeightTemporal  float64 `mapstructure:"weight_temporal"`
	WeightContent   float64 `mapstructure:"weight_content"`
	ThresholdHigh   float64 `mapstructure:"threshold_high"`
	ThresholdMedium float64 `mapstructure:"threshold_medium"`
}

// AuditConfig holds the Audit Agent's scheduler parameters.
type AuditConfig struct {
	TickSeconds         int `mapstructure:"tick_seconds"`
	CheckDeadlineSeconds int `mapstructure:"check_deadline_seconds"`
}

// DispatchConfig holds the Alert Distributor's timing parameters and its
// chat-channel destination.
type DispatchConfig struct {
	ChannelTimeoutSeconds int    `mapstructure:"channel_timeout_seconds"`
	DedupWindowSeconds    int    `mapstructure:"dedup_window_seconds"`
	WebhookURL            string `mapstructure:"webhook_url"`
	ChannelRef            string `mapstructure:"channel_ref"`
}

// ColdstoreConfig selects and parameterizes the Cold-tier retention archive
// backend. Backend is "" (no archive) or "local" or "s3"; DynamoTable is
// only consulted for the "s3" backend and, when set, fronts it with a
// pointer index.
type ColdstoreConfig struct {
	Backend     string `mapstructure:"backend"`
	LocalDir    string `mapstructure:"local_dir"`
	Region      string `mapstructure:"region"`
	Bucket      string `mapstructure:"bucket"`
	Prefix      string `mapstructure:"prefix"`
	DynamoTable string `mapstructure:"dynamo_table"`
}

// Config is the full recognized option set from spec.md §6.
type Config struct {
	RetentionDays       int                `mapstructure:"retention_days"`
	Entanglement        EntanglementConfig `mapstructure:"entanglement"`
	SymptomDiagnosisMap map[string][]string `mapstructure:"symptom_diagnosis_map"`
	Audit               AuditConfig        `mapstructure:"audit"`
	Dispatch            DispatchConfig     `mapstructure:"dispatch"`
	Coldstore           ColdstoreConfig    `mapstructure:"coldstore"`
}

// Default returns the built-in baseline described in §6's option table.
func Default() Config {
	return Config{
		RetentionDays: 180,
		Entanglement: EntanglementConfig{
			TemporalDecay:   -0.05,
			WeightTemporal:  0.7,
			WeightContent:   0.3,
			ThresholdHigh:   0.85,
			ThresholdMedium: 0.5,
		},
		SymptomDiagnosisMap: DefaultSymptomDiagnosisMap(),
		Audit: AuditConfig{
			TickSeconds:          300,
			CheckDeadlineSeconds: 30,
		},
		Dispatch: DispatchConfig{
			ChannelTimeoutSeconds: 60,
			DedupWindowSeconds:    600,
		},
		Coldstore: ColdstoreConfig{
			Backend:  "local",
			LocalDir: "./coldstore",
		},
	}
}

// RetentionThreshold returns the Hot->Cold duration threshold.
func (c Config) RetentionThreshold() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Load resolves configuration from (in ascending precedence) built-in
// defaults, an optional config file, environment variables prefixed
// SURVEILLANCE_, and an already-populated viper instance (typically bound
// to CLI flags by the caller before Load is invoked).
//
// Unknown keys present in the config file are rejected: Load uses
// UnmarshalExact so a typo in a YAML/JSON config surfaces immediately
// rather than being silently ignored.
func Load(v *viper.Viper, configName, configPath string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	defaults := Default()
	setDefaults(v, defaults)

	v.SetEnvPrefix("SURVEILLANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configName != "" {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		if configPath != "" {
			v.AddConfigPath(configPath)
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config (unknown key?): %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("retention_days", d.RetentionDays)
	v.SetDefault("entanglement.temporal_decay", d.Entanglement.TemporalDecay)
	v.SetDefault("entanglement.weight_temporal", d.Entanglement.WeightTemporal)
	v.SetDefault("entanglement.weight_content", d.Entanglement.WeightContent)
	v.SetDefault("entanglement.threshold_high", d.Entanglement.ThresholdHigh)
	v.SetDefault("entanglement.threshold_medium", d.Entanglement.ThresholdMedium)
	v.SetDefault("symptom_diagnosis_map", d.SymptomDiagnosisMap)
	v.SetDefault("audit.tick_seconds", d.Audit.TickSeconds)
	v.SetDefault("audit.check_deadline_seconds", d.Audit.CheckDeadlineSeconds)
	v.SetDefault("dispatch.channel_timeout_seconds", d.Dispatch.ChannelTimeoutSeconds)
	v.SetDefault("dispatch.dedup_window_seconds", d.Dispatch.DedupWindowSeconds)
	v.SetDefault("dispatch.webhook_url", d.Dispatch.WebhookURL)
	v.SetDefault("dispatch.channel_ref", d.Dispatch.ChannelRef)
	v.SetDefault("coldstore.backend", d.Coldstore.Backend)
	v.SetDefault("coldstore.local_dir", d.Coldstore.LocalDir)
	v.SetDefault("coldstore.region", d.Coldstore.Region)
	v.SetDefault("coldstore.bucket", d.Coldstore.Bucket)
	v.SetDefault("coldstore.prefix", d.Coldstore.Prefix)
	v.SetDefault("coldstore.dynamo_table", d.Coldstore.DynamoTable)
}
