package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cristianoliveira/retroshelf/cmd"
	"github.com/cristianoliveira/retroshelf/internal/colors"
	"github.com/cristianoliveira/retroshelf/internal/config"
	"github.com/cristianoliveira/retroshelf/internal/logging"
)

// errReported marks failures whose message was already printed.
var errReported = stderrors.New("reported")

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line and returns the process exit code.
func run(args []string) int {
	config.Load()
	if err := logging.InitGlobal(); err != nil {
		colors.Debug(fmt.Sprintf("file logging disabled: %v", err))
	}
	defer func() {
		sharedApp.close()
		_ = logging.ShutdownGlobal()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Debug("command started", "args", args)
	cmd.RootCmd.SetArgs(args)
	if err := cmd.RootCmd.ExecuteContext(ctx); err != nil {
		if !stderrors.Is(err, errReported) {
			colors.Error(err.Error())
		}
		logging.Debug("command failed", "error", err)
		return 1
	}
	return 0
}
