// Command console serves the partner console and offers gate diagnostics.
package main

import (
	"context"
	"os"

	"github.com/partnerdesk/console/internal/bootstrap"
)

func main() {
	logger := bootstrap.InitLogger()
	root := newRootCmd(&app{logger: logger, loadConfig: bootstrap.LoadConfig, logOut: os.Stdout})
	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command failure to the shell
	}
}
