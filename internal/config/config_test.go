package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/adbtrace/internal/capture"
	"github.com/danmuck/adbtrace/internal/protocol/timing"
	"github.com/danmuck/adbtrace/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "adbtrace.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, "[decoder]\nsamplerate = 2000000\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.Decoder.Samplerate != 2_000_000 {
		t.Fatalf("samplerate: got %d", cfg.Decoder.Samplerate)
	}
	if cfg.Decoder.Tolerance != def.Decoder.Tolerance {
		t.Fatalf("tolerance: got %v", cfg.Decoder.Tolerance)
	}
	if cfg.Server.Addr != def.Server.Addr || cfg.Server.Node != def.Server.Node {
		t.Fatalf("server defaults lost: %+v", cfg.Server)
	}
	if cfg.Server.MaxCaptureBytes != def.Server.MaxCaptureBytes {
		t.Fatalf("max_capture_bytes: got %d", cfg.Server.MaxCaptureBytes)
	}
}

func TestLoadAllKeys(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
[decoder]
samplerate = "500kHz"
tolerance = "relaxed"

[capture]
format = "text"
channel = 3

[server]
node = "bench"
addr = "127.0.0.1:9400"
max_capture_bytes = 1024
cors_origins = [" http://a ", "", "http://b"]
token = " s3cret "
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Decoder.Samplerate != 500_000 || cfg.Decoder.Tolerance != timing.Relaxed {
		t.Fatalf("decoder: %+v", cfg.Decoder)
	}
	if cfg.Capture.Format != capture.FormatText || cfg.Capture.Channel != 3 {
		t.Fatalf("capture: %+v", cfg.Capture)
	}
	if cfg.Server.Node != "bench" || cfg.Server.Addr != "127.0.0.1:9400" || cfg.Server.MaxCaptureBytes != 1024 {
		t.Fatalf("server: %+v", cfg.Server)
	}
	if len(cfg.Server.CorsOrigins) != 2 || cfg.Server.CorsOrigins[0] != "http://a" || cfg.Server.CorsOrigins[1] != "http://b" {
		t.Fatalf("cors origins: %#v", cfg.Server.CorsOrigins)
	}

	if cfg.Server.Token != "s3cret" {
		t.Fatalf("token: got %q", cfg.Server.Token)
	}

	dc := cfg.Decoder.Decoder()
	if dc.Samplerate != 500_000 || dc.Profile != timing.Relaxed {
		t.Fatalf("decoder config: %+v", dc)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[decoder]\nrate = 1\n", "unknown keys decoder.rate"},
		{"negative samplerate", "[decoder]\nsamplerate = -5\n", "invalid samplerate"},
		{"bad samplerate text", "[decoder]\nsamplerate = \"fast\"\n", "invalid samplerate"},
		{"huge samplerate", "[decoder]\nsamplerate = 1e30\n", "invalid samplerate"},
		{"bad tolerance", "[decoder]\ntolerance = \"loose\"\n", "tolerance"},
		{"bad format", "[capture]\nformat = \"vcd\"\n", "format"},
		{"channel range", "[capture]\nchannel = 8\n", "out of range"},
		{"empty addr", "[server]\naddr = \" \"\n", "missing addr"},
		{"zero capture limit", "[server]\nmax_capture_bytes = 0\n", "max_capture_bytes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseSamplerate(t *testing.T) {
	testlog.Start(t)
	good := map[string]uint64{
		"2000000": 2_000_000,
		"2MHz":    2_000_000,
		"2.5M":    2_500_000,
		"500kHz":  500_000,
		"500 k":   500_000,
		"1G":      1_000_000_000,
		"48000hz": 48_000,
	}
	for in, want := range good {
		got, err := ParseSamplerate(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: got %d want %d", in, got, want)
		}
	}
	for _, in := range []string{"", "0", "-1M", "MHz", "fast", "1e30", "1e20Hz", "99999999999G", "+Inf"} {
		if _, err := ParseSamplerate(in); !errors.Is(err, ErrInvalidSamplerate) {
			t.Fatalf("%q: expected ErrInvalidSamplerate, got %v", in, err)
		}
	}
}

func TestTemplatesLoad(t *testing.T) {
	testlog.Start(t)
	for _, kind := range []string{"decode", "serve"} {
		path := filepath.Join(t.TempDir(), kind+".toml")
		if err := WriteTemplate(path, kind, false); err != nil {
			t.Fatalf("%s: write: %v", kind, err)
		}
		if _, err := Load(path); err != nil {
			t.Fatalf("%s: template does not load: %v", kind, err)
		}
		if err := WriteTemplate(path, kind, false); err == nil {
			t.Fatalf("%s: expected refusal to overwrite", kind)
		}
		if err := WriteTemplate(path, kind, true); err != nil {
			t.Fatalf("%s: overwrite: %v", kind, err)
		}
	}
	if _, err := Template("ghost"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}
