package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/markdingo/propwait/log"
)

// The usage output is formatted to fit within a 100 column terminal.
func usage(fs *flag.FlagSet) {
	fmt.Fprintf(log.Out(),
		`NAME
	%s -- wait until DNS TXT records are visible on their authoritative servers

SYNOPSIS
	%s [options] record expected-value [record expected-value]...

DESCRIPTION
	%s proves that a TXT record has propagated by walking the DNS delegation
	chain from a bootstrap resolver down to the authoritative name servers of each
	record, then querying every one of those servers directly over UDP. A record
	only counts as propagated once all of its authoritative servers answer with the
	expected value in the same polling pass. This is the verification step of a
	DNS-01 ACME challenge: run it after publishing the challenge record and before
	telling the CA to validate.

	The authoritative server set is re-discovered on every polling pass, so
	delegation changes made while waiting are picked up. Exit status is 0 once all
	records are confirmed and 1 on deadline, interrupt or SIGUSR1.

OPTIONS
%s
`,
		programName, programName, programName, fs.FlagUsages())
}
