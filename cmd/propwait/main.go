package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/markdingo/propwait/log"
	"github.com/markdingo/propwait/osutil"
	"github.com/markdingo/propwait/pregen"
	"github.com/markdingo/propwait/propagation"
	"github.com/markdingo/propwait/resolver"
)

const programName = "propwait"

// maxWait caps the open-ended variant of --propagation-seconds=0. An hour is well past
// the point where waiting longer will change the outcome.
const maxWait = time.Hour

func fatal(err error, messages ...string) {
	msg := "Fatal"
	if len(messages) > 0 {
		msg += ": " + strings.Join(messages, " ")
	}
	if err != nil {
		msg += ": " + err.Error()
	}
	fmt.Fprintln(log.Out(), msg)
	os.Exit(1)
}

func main() {
	cfg := &config{}
	switch cfg.parseOptions(os.Args) {
	case parseStop:
		return
	case parseFailed:
		os.Exit(1)
	case parseContinue:
	}

	// Transfer logging options to the log package

	if cfg.logMajorFlag {
		log.SetLevel(log.MajorLevel)
	}
	if cfg.logMinorFlag {
		log.SetLevel(log.MinorLevel)
	}
	if cfg.logDebugFlag {
		log.SetLevel(log.DebugLevel)
	}

	if cfg.propagationSeconds < 0 {
		fatal(nil, "--propagation-seconds cannot be negative")
	}

	bootstrap := cfg.bootstrap
	if len(bootstrap) == 0 {
		bootstrap = defaultBootstrap()
	}

	wait := waitDuration(cfg.propagationSeconds)
	if cfg.propagationSeconds > 0 {
		log.Majorf("Waiting at most %d seconds for DNS changes to propagate",
			cfg.propagationSeconds)
	} else {
		log.Major("Waiting for DNS changes to propagate")
	}
	log.Minorf("%s %s bootstrap=%s tasks=%d",
		programName, pregen.Version, bootstrap, len(cfg.tasks))

	// An operator signal abandons the wait without killing us: the exit status
	// still reports what had and had not propagated by then.
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 2)
	osutil.SignalNotify(sig)
	go func() {
		s := <-sig
		if osutil.IsSignalUSR1(s) {
			log.Major("SIGUSR1 - abandoning propagation wait")
		} else {
			log.Major("Interrupted - abandoning propagation wait")
		}
		cancel()
	}()

	w := propagation.NewWaiter(resolver.NewResolver(), bootstrap)
	if cfg.interval > 0 {
		w.SetInterval(cfg.interval)
	}

	result := w.Wait(ctx, cfg.tasks, time.Now().Add(wait))
	if result.Confirmed {
		log.Major("All records visible on their authoritative servers")
		return
	}

	for _, ck := range result.Unconfirmed {
		log.Major("Not confirmed: ", ck.String())
	}
	os.Exit(1)
}

// waitDuration maps the conventional propagation-seconds setting onto a wait budget:
// zero means "until confirmed" subject to the internal cap.
func waitDuration(seconds int) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return maxWait
}
