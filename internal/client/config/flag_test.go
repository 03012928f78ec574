package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd",
			"-f", "local.db", "-a", "http://127.0.0.1:9090", "-s", "secret", "-r", "7", "-i", "5",
		}, expectPanic: false,
			expected: &Config{
				LocalDBPath:         "local.db",
				ServerEndpointAddr:  "http://127.0.0.1:9090",
				SecretKey:           "secret",
				RemoteTimeout:       7 * time.Second,
				OnlineCheckInterval: 5 * time.Second,
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			cfg := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(cfg) })
				assert.Empty(t, cmp.Diff(cfg, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(cfg) })
			}
		})
	}
}
