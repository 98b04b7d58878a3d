package main

import (
	"fmt"
	"log"
	"strings"

	"medchron/internal/config"
)

// logFlags maps the configured log format and level onto standard logger
// flags. "console" stamps local time, "utc" stamps UTC with microseconds and
// "plain" leaves timestamps to the process supervisor. Level "debug" adds the
// calling file and line.
func logFlags(cfg config.LogConfig) (int, error) {
	var flags int
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		flags = log.LstdFlags
	case "utc":
		flags = log.LstdFlags | log.Lmicroseconds | log.LUTC
	case "plain":
		flags = 0
	default:
		return 0, fmt.Errorf("unknown log format %q (want console, utc or plain)", cfg.Format)
	}

	switch strings.ToLower(cfg.Level) {
	case "", "info":
	case "debug":
		flags |= log.Lshortfile
	default:
		return 0, fmt.Errorf("unknown log level %q (want info or debug)", cfg.Level)
	}
	return flags, nil
}

func configureLogging(cfg config.LogConfig) error {
	flags, err := logFlags(cfg)
	if err != nil {
		return err
	}
	log.SetFlags(flags)
	return nil
}
