package main

import (
	"os"
	"runtime"

	"github.com/sqweek/dialog"

	"github.com/hubastard/handmade/engine/logging"
)

// GLFW and GL must stay on the main thread.
func init() { runtime.LockOSThread() }

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.Get().WithError(err).Error("fatal")
		if hasDesktop(opts.backend) {
			dialog.Message("%v", err).Title("Handmade").Error()
		}
		os.Exit(1)
	}
}

// hasDesktop reports whether a native message box makes sense for backend.
func hasDesktop(backend string) bool {
	switch backend {
	case "", "headless", "tty":
		return false
	}
	return true
}
