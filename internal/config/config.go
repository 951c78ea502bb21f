// ABOUTME: Layered configuration for the dancefloor binaries
// ABOUTME: Defaults, then an optional YAML file, then command-line flags
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/dancefloor/pkg/dance"
	"github.com/harperreed/dancefloor/pkg/formation"
	"github.com/harperreed/dancefloor/pkg/spectrum"
)

const (
	DefaultPort        = 8928
	DefaultFrameRate   = 60
	DefaultFrameStride = 2

	maxFrameRate = 240
)

// Config holds every setting a dancefloor binary may use
type Config struct {
	// Floor
	Dancers       int                `yaml:"dancers"`
	Speed         float64            `yaml:"speed"`
	Sync          bool               `yaml:"sync"`
	AutoSync      bool               `yaml:"auto_sync"`
	Particles     bool               `yaml:"particles"`
	Aspect        string             `yaml:"aspect"`
	Seed          int64              `yaml:"seed"`
	Personalities map[string]float64 `yaml:"personalities"`

	// Audio and analysis
	Audio     string  `yaml:"audio"`
	BPM       float64 `yaml:"bpm"`
	FrameRate int     `yaml:"frame_rate"`
	FFTSize   int     `yaml:"fft_size"`
	MuteAudio bool    `yaml:"mute_audio"`

	// Network
	Port        int    `yaml:"port"`
	Name        string `yaml:"name"`
	Server      string `yaml:"server"`
	MDNS        bool   `yaml:"mdns"`
	FrameStride int    `yaml:"frame_stride"`

	// Process
	LogFile string `yaml:"log_file"`
	Debug   bool   `yaml:"debug"`
	NoTUI   bool   `yaml:"no_tui"`
}

// Default returns the built-in settings
func Default() Config {
	opts := dance.DefaultOptions()
	return Config{
		Dancers:     opts.Count,
		Speed:       opts.Speed,
		AutoSync:    opts.AutoSync,
		Particles:   opts.Particles,
		Aspect:      string(opts.Aspect),
		FrameRate:   DefaultFrameRate,
		FFTSize:     spectrum.DefaultFFTSize,
		Port:        DefaultPort,
		MDNS:        true,
		FrameStride: DefaultFrameStride,
		LogFile:     "dancefloor.log",
	}
}

// LoadFile overlays the YAML file at path onto base
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read config: %w", err)
	}
	c := base
	if err := yaml.Unmarshal(data, &c); err != nil {
		return base, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return c, nil
}

// Parse layers an optional -config file and the flags in args over base.
// fs may already carry binary-specific flags; they are parsed alongside.
func Parse(fs *flag.FlagSet, args []string, base Config) (Config, error) {
	c := base
	path := configPath(args)
	if path != "" {
		var err error
		if c, err = LoadFile(path, base); err != nil {
			return base, err
		}
	}

	fs.String("config", path, "YAML config file")
	c.bind(fs)
	if err := fs.Parse(args); err != nil {
		return base, err
	}
	if err := c.Validate(); err != nil {
		return base, err
	}
	return c, nil
}

// configPath finds -config or --config before the flag set is built, so
// the file's values can become the flag defaults
func configPath(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		name := strings.TrimLeft(a, "-")
		if name == a {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func (c *Config) bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Dancers, "dancers", c.Dancers, "Number of dancers")
	fs.Float64Var(&c.Speed, "speed", c.Speed, "Speed multiplier (0.1-2.0)")
	fs.BoolVar(&c.Sync, "sync", c.Sync, "Start in manual sync")
	fs.BoolVar(&c.AutoSync, "auto-sync", c.AutoSync, "Let loud passages sync the crowd")
	fs.BoolVar(&c.Particles, "particles", c.Particles, "Draw trails and particles")
	fs.StringVar(&c.Aspect, "aspect", c.Aspect, "Canvas aspect: 16:9 or 9:16")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "Random seed (0 seeds from the clock)")
	fs.Func("personalities", "Personality weights as breakdancer,waver,jumper,spinner,groover", func(s string) error {
		m, err := parseWeights(s)
		if err != nil {
			return err
		}
		c.Personalities = m
		return nil
	})

	fs.StringVar(&c.Audio, "audio", c.Audio, "Audio file or URL (MP3, FLAC, WAV, Opus, PCM). If not specified, plays a test beat")
	fs.Float64Var(&c.BPM, "bpm", c.BPM, "Tempo of the test beat")
	fs.IntVar(&c.FrameRate, "fps", c.FrameRate, "Animation frames per second")
	fs.IntVar(&c.FFTSize, "fft-size", c.FFTSize, "Analyser FFT size (power of two)")
	fs.BoolVar(&c.MuteAudio, "mute-audio", c.MuteAudio, "Analyse without playing audio")

	fs.IntVar(&c.Port, "port", c.Port, "WebSocket server port")
	fs.StringVar(&c.Name, "name", c.Name, "Friendly name (default: hostname-dancefloor)")
	fs.StringVar(&c.Server, "server", c.Server, "Manual server address (skip mDNS)")
	fs.BoolFunc("no-mdns", "Disable mDNS", func(v string) error {
		off, err := strconv.ParseBool(v)
		c.MDNS = !off
		return err
	})
	fs.IntVar(&c.FrameStride, "frame-stride", c.FrameStride, "Broadcast every Nth frame")

	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Log file path")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
	fs.BoolVar(&c.NoTUI, "no-tui", c.NoTUI, "Disable TUI, use streaming logs instead")
	fs.BoolFunc("stream-logs", "Alias for -no-tui", func(v string) error {
		on, err := strconv.ParseBool(v)
		c.NoTUI = c.NoTUI || on
		return err
	})
}

// Validate checks ranges
func (c *Config) Validate() error {
	if c.Dancers < 1 || c.Dancers > dance.MaxCount {
		return fmt.Errorf("%w: dancers must be between 1 and %d, got %d", dance.ErrInvalidCount, dance.MaxCount, c.Dancers)
	}
	if c.Speed < dance.MinSpeed || c.Speed > dance.MaxSpeed {
		return fmt.Errorf("speed must be between %.1f and %.1f, got %v", dance.MinSpeed, dance.MaxSpeed, c.Speed)
	}
	if _, err := formation.ParseAspect(c.Aspect); err != nil {
		return err
	}
	if _, err := c.Distribution(); err != nil {
		return err
	}
	if c.FrameRate < 1 || c.FrameRate > maxFrameRate {
		return fmt.Errorf("fps must be between 1 and %d, got %d", maxFrameRate, c.FrameRate)
	}
	if c.FFTSize < spectrum.MinBandFFTSize || c.FFTSize > spectrum.MaxFFTSize {
		return fmt.Errorf("fft-size must be between %d and %d, got %d", spectrum.MinBandFFTSize, spectrum.MaxFFTSize, c.FFTSize)
	}
	if c.FrameStride < 1 {
		return errors.New("frame-stride must be at least 1")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Distribution converts the personality weight map, rejecting unknown names.
// Personalities left out get weight zero; an empty map is the even split.
func (c *Config) Distribution() (dance.Distribution, error) {
	if len(c.Personalities) == 0 {
		return dance.EvenDistribution(), nil
	}
	var d dance.Distribution
	for name, w := range c.Personalities {
		idx := -1
		for i, p := range dance.Personalities {
			if string(p) == strings.ToLower(name) {
				idx = i
			}
		}
		if idx < 0 {
			return d, fmt.Errorf("unknown personality %q", name)
		}
		d[idx] = w
	}
	return d, d.Validate()
}

// EnsembleOptions builds the engine options described by c
func (c *Config) EnsembleOptions() (dance.Options, error) {
	d, err := c.Distribution()
	if err != nil {
		return dance.Options{}, err
	}
	aspect, err := formation.ParseAspect(c.Aspect)
	if err != nil {
		return dance.Options{}, err
	}
	return dance.Options{
		Count:        c.Dancers,
		Aspect:       aspect,
		Speed:        c.Speed,
		Sync:         c.Sync,
		AutoSync:     c.AutoSync,
		Particles:    c.Particles,
		Distribution: d,
		Seed:         c.Seed,
	}, nil
}

// DisplayName returns Name or hostname-suffix when Name is empty
func (c *Config) DisplayName(suffix string) string {
	if c.Name != "" {
		return c.Name
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%s", hostname, suffix)
}

// parseWeights reads five comma-separated weights in personality order
func parseWeights(s string) (map[string]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(dance.Personalities) {
		return nil, fmt.Errorf("expected %d weights, got %d", len(dance.Personalities), len(parts))
	}
	m := make(map[string]float64, len(parts))
	for i, p := range parts {
		w, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %d: %w", i+1, err)
		}
		m[string(dance.Personalities[i])] = w
	}
	return m, nil
}
