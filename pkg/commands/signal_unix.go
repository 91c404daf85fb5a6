//go:build !windows

package commands

import (
	"os"
	"syscall"
)

func wakeSignals() []os.Signal {
	return []os.Signal{syscall.SIGUSR1}
}
