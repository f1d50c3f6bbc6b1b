// Package main is the FXSentinel entry point.
//
//	fxsentinel serve            # HTTP API, Telegram bot and alert scheduler
//	fxsentinel check --pair USD/JPY
package main

import (
	"os"

	"FXSentinel/cmd/fxsentinel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
