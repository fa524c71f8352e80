package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "decode":
		return decodeTemplate, nil
	case "serve":
		return serveTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const decodeTemplate = `[decoder]
samplerate = "2MHz"
tolerance = "strict"

[capture]
format = "raw"
channel = 0
`

const serveTemplate = `[decoder]
tolerance = "relaxed"

[capture]
format = "raw"
channel = 0

[server]
node = "adbtrace"
addr = ":9300"
max_capture_bytes = 67108864
cors_origins = ["http://localhost:3000"]
token = ""
`
