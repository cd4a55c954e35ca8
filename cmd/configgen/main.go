package main

import (
	"flag"

	"github.com/danmuck/meatpack/internal/config"
	"github.com/danmuck/meatpack/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	kind := flag.String("kind", "meatpack", "config kind: meatpack|meatpackd")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	logging.ConfigureRuntime()

	path := defaultPath(*kind)
	if *validate {
		if *input != "" {
			path = *input
		}
		if _, err := config.Load(path); err != nil {
			log.Fatal().Err(err).Str("kind", *kind).Msg("validation failed")
		}
		log.Info().Str("kind", *kind).Str("path", path).Msg("validated config")
		return
	}

	if *output != "" {
		path = *output
	}
	if err := config.WriteTemplate(path, *kind, *force); err != nil {
		log.Fatal().Err(err).Msg("write template failed")
	}
	log.Info().Str("kind", *kind).Str("path", path).Msg("wrote config template")
}

func defaultPath(kind string) string {
	switch kind {
	case "meatpack":
		return "meatpack.toml"
	case "meatpackd":
		return "cmd/meatpackd/config.toml"
	default:
		log.Fatal().Str("kind", kind).Msg("unknown kind")
		return ""
	}
}
