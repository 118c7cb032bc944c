package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/onkernel/imgreg/lib/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("imgreg failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("no command given")
	}

	app, cleanup, err := initializeApp()
	if err != nil {
		return err
	}
	defer cleanup()
	slog.SetDefault(app.Logger)

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.AddToContext(ctx, app.Logger)

	app.Logger.DebugContext(ctx, "running command", "command", args[0], "registry", app.Config.RegistryAddress())

	return execute(ctx, app.Registry, args, os.Stdout, app.Config.OutputFormat)
}

// errUsage marks bad invocations.
var errUsage = errors.New("usage")

const usage = `usage: imgreg <command> [args]

commands:
  list                 brief listing of every image
  detail               every image with all fields
  show ID [ID...]      one or more images
  add FILE             register the image described in FILE (JSON or YAML)
  update ID FILE       update image ID from FILE
  delete ID            delete image ID
`

func usageError(format string, a ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, a...))
}
