// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pmid-pdf/pkg/types"
)

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		name      string
		env       types.Environment
		cfg       types.LoggingConfig
		wantLevel logrus.Level
		wantJSON  bool
		errMsg    string
	}{
		{
			name:      "production defaults to json at info",
			env:       types.EnvProduction,
			wantLevel: logrus.InfoLevel,
			wantJSON:  true,
		},
		{
			name:      "development defaults to text at debug",
			env:       types.EnvDevelopment,
			wantLevel: logrus.DebugLevel,
		},
		{
			name:      "explicit settings win",
			env:       types.EnvProduction,
			cfg:       types.LoggingConfig{Level: "warn", Format: "text"},
			wantLevel: logrus.WarnLevel,
		},
		{
			name:   "bad level",
			env:    types.EnvLocal,
			cfg:    types.LoggingConfig{Level: "loud"},
			errMsg: "parsing log level",
		},
		{
			name:   "bad format",
			env:    types.EnvLocal,
			cfg:    types.LoggingConfig{Format: "xml"},
			errMsg: "unknown log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := NewWithWriter(&buf, tt.env, tt.cfg)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, l.Level)

			l.WithField("pmid", "12345").Error("boom")
			if tt.wantJSON {
				var entry map[string]any
				require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
				assert.Equal(t, "12345", entry["pmid"])
				assert.Equal(t, "boom", entry["msg"])
			} else {
				assert.Contains(t, buf.String(), "pmid=12345")
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.NotPanics(t, func() { l.Error("dropped") })
}
