package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softtty/softtty-go/pkg/pty"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
max_ptys: 64
port_capacity: 512
trace_file: /tmp/trace.tlog
`))
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.MaxPtys)
	assert.Equal(t, 512, cfg.PortCapacity)
	assert.Equal(t, "/tmp/trace.tlog", cfg.TraceFile)
	// Omitted fields keep defaults.
	assert.Equal(t, pty.DefaultWriteRoom, cfg.WriteRoom)
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{name: "max_ptys too large", yaml: "max_ptys: 5000", want: ErrMaxPtysRange},
		{name: "max_ptys zero", yaml: "max_ptys: 0", want: ErrMaxPtysRange},
		{name: "negative port capacity", yaml: "port_capacity: -1", want: ErrPortCapacityRange},
		{name: "zero write room", yaml: "write_room: 0", want: ErrWriteRoomRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("max_ptys: ["))
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "softtty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_ptys: 16\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.MaxPtys)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOptionsConversion(t *testing.T) {
	cfg := Default()
	cfg.MaxPtys = 32

	opts := cfg.Options()
	assert.Equal(t, 32, opts.MaxPtys)
	assert.Equal(t, cfg.PortCapacity, opts.PortCapacity)
	assert.Equal(t, cfg.WriteRoom, opts.WriteRoom)
	assert.Nil(t, opts.Logger)
}
