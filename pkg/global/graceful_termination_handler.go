package global

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// InstallGracefulTerminationHandler installs signal handlers, so that
// this process gets notified when it is requested to shut down.
//
// This method returns a Context that is canceled once shutdown is
// initiated. It also returns an errgroup.Group in which the caller
// schedules servers that must drain prior to shutting down. Goroutines
// scheduled in this group must respect cancellation of the Context.
// If draining takes longer than shutdownTimeout, the process shuts
// down regardless. A zero timeout waits indefinitely.
func InstallGracefulTerminationHandler(shutdownTimeout time.Duration) (context.Context, *errgroup.Group) {
	ctx, ctxCancel := context.WithCancel(context.Background())
	var group errgroup.Group

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		receivedSignal := <-signalChan
		log.Printf("Received %s signal. Draining servers.", receivedSignal.String())
		start := time.Now()

		ctxCancel()
		drained := make(chan error, 1)
		go func() { drained <- group.Wait() }()
		var timeout <-chan time.Time
		if shutdownTimeout > 0 {
			timer := time.NewTimer(shutdownTimeout)
			defer timer.Stop()
			timeout = timer.C
		}
		select {
		case err := <-drained:
			if err != nil {
				log.Print("Graceful shutdown failed: ", err)
			} else {
				log.Printf("Graceful shutdown succeeded after %s", time.Since(start))
			}
		case <-timeout:
			log.Printf("Servers did not drain within %s. Shutting down anyway.", shutdownTimeout)
		}

		// Raise the original signal once again with the default
		// handler installed, so that the exit status reflects it.
		signal.Reset(receivedSignal)
		process, err := os.FindProcess(os.Getpid())
		if err != nil {
			panic(err)
		}
		if err := process.Signal(receivedSignal); err != nil {
			panic(err)
		}
		panic("Raising the original signal didn't cause us to shut down")
	}()

	return ctx, &group
}
