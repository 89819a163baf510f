package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "seconds", input: "30s", expected: 30 * time.Second},
		{name: "hours", input: "24h", expected: 24 * time.Hour},
		{name: "days", input: "7d", expected: 7 * 24 * time.Hour},
		{name: "weeks", input: "2w", expected: 14 * 24 * time.Hour},
		{name: "fractional days", input: "1.5d", expected: 36 * time.Hour},
		{name: "negative days", input: "-1d", expected: -24 * time.Hour},
		{name: "unknown suffix", input: "3y", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.ToDuration())
		})
	}
}

func TestDuration_YAML(t *testing.T) {
	var cfg struct {
		TTL Duration `yaml:"ttl"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("ttl: 2w\n"), &cfg))
	assert.Equal(t, 14*24*time.Hour, cfg.TTL.ToDuration())

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Equal(t, "ttl: 336h0m0s\n", string(out))

	err = yaml.Unmarshal([]byte("ttl: soon\n"), &cfg)
	assert.Error(t, err)
}

func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"15m"`), &d))
	assert.Equal(t, 15*time.Minute, d.ToDuration())

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.ToDuration())

	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(out))
}
