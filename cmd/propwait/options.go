package main

import (
	"fmt"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/markdingo/propwait/log"
	"github.com/markdingo/propwait/pregen"
	"github.com/markdingo/propwait/propagation"
)

type parseResult int // This is a ternary variable
const (
	parseStop     parseResult = iota // No error, but don't continue
	parseContinue                    // No errors and continue
	parseFailed                      // Errors, do not continue
)

type config struct {
	propagationSeconds int
	interval           time.Duration
	bootstrap          string

	logMajorFlag bool
	logMinorFlag bool
	logDebugFlag bool

	tasks []propagation.Task
}

// parseOptions fills in the config from the command line. Remaining arguments after the
// flags are record/value pairs, one pair per challenge record to verify.
func (t *config) parseOptions(args []string) parseResult {
	var helpFlag, versionFlag bool

	name := programName
	if len(args) > 0 {
		name = args[0]
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Consider '-h' for command-line usage")
	}
	fs.SetOutput(log.Out())

	// Non-config flags

	fs.BoolVarP(&helpFlag, "help", "h", false, "Print command-line usage")
	fs.BoolVarP(&versionFlag, "version", "v", false, "Print version and release date")

	// config flags

	fs.IntVar(&t.propagationSeconds, "propagation-seconds", 0,
		`Maximum seconds to wait for the records to become visible on
their authoritative servers. Zero means wait until confirmed,
capped at one hour.`)
	fs.DurationVar(&t.interval, "interval", 0,
		"Pause between polling iterations (default 5s)")
	fs.StringVar(&t.bootstrap, "bootstrap", "",
		`Resolver to start each delegation walk from, as host[:port].
The default is the first name server in /etc/resolv.conf.`)

	fs.BoolVar(&t.logMajorFlag, "log-major", true, "Log major events to Stdout")
	fs.BoolVar(&t.logMinorFlag, "log-minor", false,
		"Log minor events to Stdout - this implies --log-major")
	fs.BoolVar(&t.logDebugFlag, "log-debug", false,
		"Log debug events to Stdout - this implies --log-minor")

	err := fs.Parse(args[1:])
	if err != nil {
		return parseFailed
	}

	if helpFlag {
		usage(fs)
		return parseStop
	}
	if versionFlag {
		fmt.Fprintln(log.Out(), programName, pregen.Version, "released", pregen.ReleaseDate)
		return parseStop
	}

	rest := fs.Args()
	if len(rest) == 0 || len(rest)%2 != 0 {
		fmt.Fprintln(log.Out(),
			"Error: expect record/value pairs after options, got", len(rest), "argument(s)")
		return parseFailed
	}

	for ix := 0; ix < len(rest); ix += 2 {
		record := rest[ix]
		t.tasks = append(t.tasks, propagation.Task{
			Domain: deduceDomain(record),
			Record: record,
			Value:  rest[ix+1],
		})
	}

	return parseContinue
}

// deduceDomain strips the well-known challenge label so reporting can talk about the
// domain being validated rather than the record name.
func deduceDomain(record string) string {
	const prefix = "_acme-challenge."
	domain := strings.TrimSuffix(record, ".")
	if strings.HasPrefix(domain, prefix) {
		domain = domain[len(prefix):]
	}

	return domain
}
