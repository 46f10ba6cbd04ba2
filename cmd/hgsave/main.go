// hgsave converts compressed save files to editable JSON and back.
//
// Saves are LZ4 block containers holding JSON with obfuscated object
// keys. Keys are translated with a mapping definition, by default the
// hgsave.json file next to the executable.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bsm/hgsave"
	"github.com/bsm/hgsave/internal/config"
	"github.com/bsm/hgsave/internal/editor"
	"github.com/bsm/hgsave/internal/version"
	"github.com/bsm/hgsave/keymap"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// usageError reports bad invocations; it exits with status 2.
type usageError struct{ msg string }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func (e *usageError) Error() string { return e.msg }
func (e *usageError) ExitCode() int { return 2 }

// flags holds the parsed command-line flags.
type flags struct {
	configPath string
	mapping    string
	strict     bool
	logLevel   string
	noBackup   bool
	output     string
	version    bool
	help       bool
}

// env is what every command runs against.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	session *editor.Session
	output  string
	stdout  io.Writer
}

func run(args []string, stdout, stderr io.Writer) error {
	var f flags

	flagSet := pflag.NewFlagSet("hgsave", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&f.configPath, "config", "", "YAML configuration file (default: $"+config.EnvVar+")")
	flagSet.StringVar(&f.mapping, "mapping", "", "key mapping definition (default: hgsave.json next to the executable)")
	flagSet.BoolVar(&f.strict, "strict", false, "fail on object keys missing from the mapping")
	flagSet.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flagSet.BoolVar(&f.noBackup, "no-backup", false, "do not back up files before overwriting them")
	flagSet.StringVarP(&f.output, "output", "o", "", "output file; format chosen by extension")
	flagSet.BoolVar(&f.version, "version", false, "print version and exit")
	flagSet.BoolVarP(&f.help, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(stdout, flagSet)
			return nil
		}
		return usagef("%v", err)
	}

	if f.version {
		fmt.Fprintf(stdout, "hgsave %s\n", version.Info())
		return nil
	}
	if f.help || flagSet.NArg() == 0 {
		printHelp(stdout, flagSet)
		return nil
	}

	name, rest := flagSet.Arg(0), flagSet.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		return usagef("unknown command %q", name)
	}
	if len(rest) < cmd.minArgs || len(rest) > cmd.maxArgs {
		return usagef("usage: hgsave %s %s", name, cmd.usage)
	}

	e, err := setup(&f, stdout, stderr)
	if err != nil {
		return err
	}
	return cmd.run(e, rest)
}

func setup(f *flags, stdout, stderr io.Writer) (*env, error) {
	cfg, err := config.Resolve(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.strict {
		cfg.Strict = true
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.mapping != "" {
		cfg.Mapping = f.mapping
	}
	if f.noBackup {
		disabled := false
		cfg.Backup.Enabled = &disabled
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, usagef("%v", err)
	}
	if os.Getenv("HGSAVE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	keys, err := loadKeys(cfg, logger)
	if err != nil {
		return nil, err
	}

	session := editor.New(&editor.Options{
		Keys:   keys,
		Strict: cfg.Strict,
		Codec:  hgsave.NewCodec(&hgsave.Options{ChunkSize: cfg.ChunkSize, Logger: logger}),
		Backup: cfg.BackupOptions(),
		Logger: logger,
	})

	return &env{
		cfg:     cfg,
		logger:  logger,
		session: session,
		output:  f.output,
		stdout:  stdout,
	}, nil
}

// loadKeys loads the configured mapping. A missing sidecar is tolerated
// unless strict mode needs it; a missing explicit mapping is an error.
func loadKeys(cfg *config.Config, logger *slog.Logger) (*keymap.Table, error) {
	path := cfg.Mapping
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = keymap.DefaultPath(); err != nil {
			return nil, err
		}
	}

	keys, err := keymap.Load(path)
	if errors.Is(err, os.ErrNotExist) && !explicit && !cfg.Strict {
		logger.Warn("no key mapping found, keys are left unchanged", "path", path)
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	logger.Debug("loaded key mapping", "path", path, "keys", keys.Len())
	return keys, nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprint(w, `hgsave converts compressed save files to editable JSON and back.

Usage:
  hgsave [flags] <command> [arguments]

Commands:
`)
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-8s %-28s %s\n", name, commands[name].usage, commands[name].summary)
	}
	fmt.Fprintf(w, "\nFlags:\n%s", flagSet.FlagUsages())
}
