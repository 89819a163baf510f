package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/edgecomet/htmlcut/internal/common/config"
	"github.com/edgecomet/htmlcut/internal/common/configtypes"
	"github.com/edgecomet/htmlcut/internal/common/logger"
	"github.com/edgecomet/htmlcut/pkg/htmlcut"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without the process exit, returning the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("htmlcut", flag.ContinueOnError)
	flags.SetOutput(stderr)
	length := flags.Int("n", 0, "maximum visible length (default: truncate.default_length from config, or 200)")
	paragraphs := flags.Int("p", 0, "maximum number of paragraphs, 0 for unlimited")
	marker := flags.String("m", "", "completion marker (default: truncate.default_marker from config, or …)")
	keepDenylisted := flags.Bool("keep-denylisted", false, "keep images, scripts and other denylisted elements")
	configPath := flags.String("c", "", "optional YAML config with a truncate section")
	verbose := flags.Bool("v", false, "log cut statistics to stderr")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	level := configtypes.LogLevelWarn
	if *verbose {
		level = configtypes.LogLevelDebug
	}
	dl, err := logger.NewCLILogger(level)
	if err != nil {
		fmt.Fprintf(stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer dl.Sync()
	log := dl.Logger

	truncate := configtypes.TruncateConfig{}
	if *configPath != "" {
		cfg, err := config.LoadServiceConfig(*configPath, zap.NewNop())
		if err != nil {
			log.Error("Failed to load config", zap.String("path", *configPath), zap.Error(err))
			return 1
		}
		truncate = cfg.Truncate
	}

	cutter, err := config.NewCutter(truncate)
	if err != nil {
		log.Error("Invalid truncate configuration", zap.Error(err))
		return 1
	}

	n := truncate.DefaultLength
	if n == 0 {
		n = config.DefaultLength
	}
	m := config.DefaultMarker(truncate)
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			n = *length
		case "m":
			m = *marker
		}
	})

	opts := []htmlcut.Option{
		htmlcut.WithParagraphs(*paragraphs),
		htmlcut.WithMarker(m),
		htmlcut.WithDenylistStripping(!*keepDenylisted),
	}

	inputs := flags.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	for _, name := range inputs {
		data, err := readInput(name, stdin)
		if err != nil {
			log.Error("Failed to read input", zap.String("input", name), zap.Error(err))
			return 1
		}

		res, err := cutter.CutResult(string(data), n, opts...)
		if err != nil {
			log.Error("Cut failed", zap.String("input", name), zap.Error(err))
			return 1
		}

		log.Debug("Cut finished",
			zap.String("input", name),
			zap.Int("initial_length", res.InitialLength),
			zap.Int("final_length", res.FinalLength),
			zap.Bool("truncated", res.Truncated))

		if _, err := fmt.Fprintln(stdout, res.Text); err != nil {
			log.Error("Failed to write output", zap.Error(err))
			return 1
		}
	}
	return 0
}

func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}
