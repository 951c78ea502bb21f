// ABOUTME: Tests for layered configuration
// ABOUTME: Defaults, YAML overlay, flag precedence and validation
package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dancefloor/pkg/dance"
	"github.com/harperreed/dancefloor/pkg/formation"
	"github.com/harperreed/dancefloor/pkg/spectrum"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "floor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 5, c.Dancers)
	assert.True(t, c.AutoSync)
	assert.True(t, c.MDNS)

	opts, err := c.EnsembleOptions()
	require.NoError(t, err)
	assert.Equal(t, dance.DefaultOptions(), opts)
}

func TestParseFlagsOnly(t *testing.T) {
	c, err := Parse(newFlagSet(), []string{"-dancers", "12", "-aspect", "9:16", "-no-mdns", "-sync"}, Default())
	require.NoError(t, err)
	assert.Equal(t, 12, c.Dancers)
	assert.Equal(t, "9:16", c.Aspect)
	assert.False(t, c.MDNS)
	assert.True(t, c.Sync)
}

func TestYAMLThenFlags(t *testing.T) {
	path := writeConfig(t, `
dancers: 20
speed: 1.5
aspect: "9:16"
seed: 42
personalities:
  spinner: 3
  groover: 1
`)
	c, err := Parse(newFlagSet(), []string{"-config", path, "-dancers", "8"}, Default())
	require.NoError(t, err)
	assert.Equal(t, 8, c.Dancers, "flag wins over file")
	assert.Equal(t, 1.5, c.Speed)
	assert.Equal(t, int64(42), c.Seed)

	opts, err := c.EnsembleOptions()
	require.NoError(t, err)
	assert.Equal(t, formation.Portrait, opts.Aspect)
	assert.Equal(t, dance.Distribution{0, 0, 0, 3, 1}, opts.Distribution)
}

func TestConfigEqualsSyntax(t *testing.T) {
	path := writeConfig(t, "dancers: 3\n")
	c, err := Parse(newFlagSet(), []string{"--config=" + path}, Default())
	require.NoError(t, err)
	assert.Equal(t, 3, c.Dancers)
}

func TestPersonalitiesFlag(t *testing.T) {
	c, err := Parse(newFlagSet(), []string{"-personalities", "1, 0, 0, 0, 2"}, Default())
	require.NoError(t, err)
	d, err := c.Distribution()
	require.NoError(t, err)
	assert.Equal(t, dance.Distribution{1, 0, 0, 0, 2}, d)

	_, err = Parse(newFlagSet(), []string{"-personalities", "1,2"}, Default())
	assert.Error(t, err)
}

func TestStreamLogsAlias(t *testing.T) {
	c, err := Parse(newFlagSet(), []string{"-stream-logs"}, Default())
	require.NoError(t, err)
	assert.True(t, c.NoTUI)
}

func TestExtraFlagsOnCallerFlagSet(t *testing.T) {
	fs := newFlagSet()
	watch := fs.Bool("watch-only", false, "")
	_, err := Parse(fs, []string{"-watch-only"}, Default())
	require.NoError(t, err)
	assert.True(t, *watch)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero dancers", []string{"-dancers", "0"}},
		{"too many dancers", []string{"-dancers", "1000"}},
		{"slow", []string{"-speed", "0.01"}},
		{"aspect", []string{"-aspect", "4:3"}},
		{"fps", []string{"-fps", "0"}},
		{"fft too small for ultra high band", []string{"-fft-size", "256"}},
		{"fft too large", []string{"-fft-size", "65536"}},
		{"stride", []string{"-frame-stride", "0"}},
		{"port", []string{"-port", "70000"}},
		{"unknown flag", []string{"-moonwalk"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(newFlagSet(), tt.args, Default())
			assert.Error(t, err)
		})
	}
}

func TestFFTSizeCoversAllBands(t *testing.T) {
	cfg, err := Parse(newFlagSet(), []string{"-fft-size", "300"}, Default())
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.FFTSize)

	// the analyser rounds up to a power of two with at least 150 bins
	a := spectrum.NewAnalyzer(spectrum.AnalyzerConfig{FFTSize: cfg.FFTSize})
	assert.GreaterOrEqual(t, a.Bins(), spectrum.FullSampleSize)
}

func TestZeroDancersIsInvalidCount(t *testing.T) {
	_, err := Parse(newFlagSet(), []string{"-dancers", "0"}, Default())
	assert.ErrorIs(t, err, dance.ErrInvalidCount)
}

func TestBadConfigFile(t *testing.T) {
	_, err := Parse(newFlagSet(), []string{"-config", filepath.Join(t.TempDir(), "none.yaml")}, Default())
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeConfig(t, "dancers: [1, 2\n")
	_, err = Parse(newFlagSet(), []string{"-config", path}, Default())
	assert.Error(t, err)

	path = writeConfig(t, "personalities:\n  moonwalker: 1\n")
	_, err = Parse(newFlagSet(), []string{"-config", path}, Default())
	assert.ErrorContains(t, err, "moonwalker")
}

func TestDisplayName(t *testing.T) {
	c := Default()
	c.Name = "floor-one"
	assert.Equal(t, "floor-one", c.DisplayName("dancefloor"))
	c.Name = ""
	assert.Contains(t, c.DisplayName("dancefloor"), "-dancefloor")
}
