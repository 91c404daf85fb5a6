package commands

import "os"

func wakeSignals() []os.Signal {
	return nil
}
