package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/driftlab/internal/core/deform"
	"github.com/zeusync/driftlab/internal/core/drift"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadEmptyDocument(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(`
log:
  level: debug
  encoding: console
drift:
  minimum_speed: 8
  near_stop_color: yellow
deform:
  max_deform: 0.05
hud:
  mode: log
  mirror: 127.0.0.1:8089
  refresh: 200ms
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8.0, cfg.Drift.MinimumSpeed)
	assert.Equal(t, "yellow", cfg.Drift.NearStopColor)
	assert.Equal(t, drift.DefaultConfig().MinimumAngle, cfg.Drift.MinimumAngle)
	assert.Equal(t, 0.05, cfg.Deform.MaxDeform)
	assert.Equal(t, deform.DefaultConfig().DeformRadius, cfg.Deform.DeformRadius)
	assert.Equal(t, HUD{Mode: HUDLog, Mirror: "127.0.0.1:8089", Refresh: 200 * time.Millisecond}, cfg.HUD)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":     "drift:\n  minimum_sped: 3\n",
		"log level":       "log:\n  level: loud\n",
		"drift colour":    "drift:\n  near_stop_color: not-a-colour\n",
		"negative deform": "deform:\n  max_deform: -1\n",
		"hud mode":        "hud:\n  mode: gl\n",
		"car":             "car:\n  subdivisions: 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}
