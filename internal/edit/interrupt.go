package edit

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
)

// editorsRunning counts editors started by any Launcher in this process.
var editorsRunning atomic.Int32

// NotifyInterrupt returns a copy of parent that is cancelled on os.Interrupt,
// except while an editor is running. The editor shares the terminal's process
// group and receives the interrupt itself, so it decides what Ctrl-C means.
//
// The signal is caught rather than ignored, so the editor starts with the
// default disposition.
func NotifyInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-interrupts:
				if editorsRunning.Load() == 0 {
					cancel()
				}
			}
		}
	}()

	return ctx, func() {
		signal.Stop(interrupts)
		cancel()
	}
}
