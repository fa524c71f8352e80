package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/adbtrace/internal/capture"
	"github.com/danmuck/adbtrace/internal/decoder"
	"github.com/danmuck/adbtrace/internal/protocol/timing"
)

var ErrInvalidSamplerate = errors.New("config: invalid samplerate")

// Config is the full adbtrace configuration. Samplerate may stay zero here
// and be supplied per capture; decoding refuses to start without it.
type Config struct {
	Decoder DecoderConfig
	Capture CaptureConfig
	Server  ServerConfig
}

type DecoderConfig struct {
	Samplerate uint64
	Tolerance  timing.Profile
}

type CaptureConfig struct {
	Format  capture.Format
	Channel int
}

type ServerConfig struct {
	Node            string
	Addr            string
	MaxCaptureBytes int64
	CorsOrigins     []string
	// Token, when set, is required as a bearer token on POST /decode.
	Token string
}

func Default() Config {
	return Config{
		Decoder: DecoderConfig{Tolerance: timing.Strict},
		Capture: CaptureConfig{Format: capture.FormatRaw},
		Server: ServerConfig{
			Node:            "adbtrace",
			Addr:            ":9300",
			MaxCaptureBytes: 64 << 20,
		},
	}
}

// Decoder converts the decoder section for decoder.New.
func (c DecoderConfig) Decoder() decoder.Config {
	return decoder.Config{Samplerate: c.Samplerate, Profile: c.Tolerance}
}

type fileConfig struct {
	Decoder struct {
		Samplerate any    `toml:"samplerate"`
		Tolerance  string `toml:"tolerance"`
	} `toml:"decoder"`
	Capture struct {
		Format  string `toml:"format"`
		Channel int    `toml:"channel"`
	} `toml:"capture"`
	Server struct {
		Node            string   `toml:"node"`
		Addr            string   `toml:"addr"`
		MaxCaptureBytes int64    `toml:"max_capture_bytes"`
		CorsOrigins     []string `toml:"cors_origins"`
		Token           string   `toml:"token"`
	} `toml:"server"`
}

// Load reads path over Default. Keys that are absent keep their defaults;
// unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("config parse failed (%s): unknown keys %s", path, strings.Join(keys, ", "))
	}

	if meta.IsDefined("decoder", "samplerate") {
		rate, err := samplerateFrom(raw.Decoder.Samplerate)
		if err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		cfg.Decoder.Samplerate = rate
	}
	if meta.IsDefined("decoder", "tolerance") {
		p, err := timing.ParseProfile(raw.Decoder.Tolerance)
		if err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		cfg.Decoder.Tolerance = p
	}
	if meta.IsDefined("capture", "format") {
		f, err := capture.ParseFormat(raw.Capture.Format)
		if err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		cfg.Capture.Format = f
	}
	if meta.IsDefined("capture", "channel") {
		cfg.Capture.Channel = raw.Capture.Channel
	}
	if meta.IsDefined("server", "node") {
		cfg.Server.Node = strings.TrimSpace(raw.Server.Node)
	}
	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "max_capture_bytes") {
		cfg.Server.MaxCaptureBytes = raw.Server.MaxCaptureBytes
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = normalizeOrigins(raw.Server.CorsOrigins)
	}
	if meta.IsDefined("server", "token") {
		cfg.Server.Token = strings.TrimSpace(raw.Server.Token)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Capture.Channel < 0 || cfg.Capture.Channel > capture.MaxChannel {
		return fmt.Errorf("capture channel %d out of range 0..%d", cfg.Capture.Channel, capture.MaxChannel)
	}
	if strings.TrimSpace(cfg.Server.Node) == "" {
		return fmt.Errorf("server config missing node")
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server config missing addr")
	}
	if cfg.Server.MaxCaptureBytes <= 0 {
		return fmt.Errorf("server max_capture_bytes must be positive")
	}
	return nil
}

func samplerateFrom(v any) (uint64, error) {
	switch rate := v.(type) {
	case int64:
		if rate <= 0 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidSamplerate, rate)
		}
		return uint64(rate), nil
	case float64:
		if rate <= 0 || rate != math.Trunc(rate) || rate >= math.MaxUint64 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidSamplerate, rate)
		}
		return uint64(rate), nil
	case string:
		return ParseSamplerate(rate)
	default:
		return 0, fmt.Errorf("%w: unsupported value %v", ErrInvalidSamplerate, v)
	}
}

// ParseSamplerate accepts plain hertz ("2000000") or a value with a
// k/M/G suffix, optionally followed by "Hz" ("500kHz", "2MHz", "2.5M").
func ParseSamplerate(raw string) (uint64, error) {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && strings.EqualFold(s[len(s)-2:], "hz") {
		s = strings.TrimSpace(s[:len(s)-2])
	}
	mult := 1.0
	if s != "" {
		switch s[len(s)-1] {
		case 'k', 'K':
			mult = 1e3
		case 'M':
			mult = 1e6
		case 'G', 'g':
			mult = 1e9
		}
		if mult != 1 {
			s = strings.TrimSpace(s[:len(s)-1])
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSamplerate, raw)
	}
	hz := math.Round(v * mult)
	if hz <= 0 || math.IsNaN(hz) || hz >= math.MaxUint64 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSamplerate, raw)
	}
	return uint64(hz), nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
