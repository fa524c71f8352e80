package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/danmuck/adbtrace/internal/config"
)

func main() {
	kind := flag.String("kind", "decode", "config kind: decode|serve")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	path, err := defaultPath(*kind)
	if err != nil {
		log.Fatal(err)
	}

	if *validate {
		if *input != "" {
			path = *input
		}
		if _, err := config.Load(path); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	if *output != "" {
		path = *output
	}
	if err := config.WriteTemplate(path, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, path)
}

func defaultPath(kind string) (string, error) {
	switch kind {
	case "decode":
		return "cmd/adbdecode/config.toml", nil
	case "serve":
		return "cmd/adbserve/config.toml", nil
	default:
		return "", fmt.Errorf("unknown kind: %s", kind)
	}
}
