package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// version is injected at build time with -ldflags "-X main.version=...". Defaults to dev.
var version = "dev"

// cliConfig holds user supplied flag values prior to translation into
// manager construction, so main.go can validate and map.
type cliConfig struct {
	logLevel    string
	fixturePath string
	showVersion bool
}

func parseFlags(args []string) (*cliConfig, error) {
	fs := pflag.NewFlagSet("libratonectl", pflag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	cfg := &cliConfig{}
	fs.StringVarP(&cfg.logLevel, "log-level", "l", "info", "Log level: debug|info|warn|error")
	fs.StringVarP(&cfg.fixturePath, "fixture", "f", "", "Run against a YAML fixture of simulated devices instead of real sockets")
	fs.BoolVarP(&cfg.showVersion, "version", "v", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprintln(os.Stdout, "libratonectl: discover and watch networked speakers")
		fmt.Fprintln(os.Stdout, "Usage: libratonectl [flags]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch cfg.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q", cfg.logLevel)
	}

	return cfg, nil
}
