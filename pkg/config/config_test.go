package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, 180, d.RetentionDays)
	assert.Equal(t, -0.05, d.Entanglement.TemporalDecay)
	assert.Equal(t, 0.85, d.Entanglement.ThresholdHigh)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "", "")
	assert.NoError(t, err)
	assert.Equal(t, Default().RetentionDays, cfg.RetentionDays)
	assert.Contains(t, cfg.SymptomDiagnosisMap, "watery_stool")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	v := viper.New()
	v.Set("not_a_real_option", true)
	_, err := Load(v, "", "")
	assert.Error(t, err)
}

func TestRetentionThreshold(t *testing.T) {
	cfg := Default()
	cfg.RetentionDays = 2
	assert.Equal(t, 48*60*60*1e9, float64(cfg.RetentionThreshold()))
}
