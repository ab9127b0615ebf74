package propagation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/propwait/delegation"
	"github.com/markdingo/propwait/dnsutil"
	"github.com/markdingo/propwait/log"
	"github.com/markdingo/propwait/resolver"
)

const (
	defaultInterval = 5 * time.Second
	progressEvery   = 30 // Iterations between progress reports
)

// Waiter polls the authoritative servers of each task's record until every server
// answers with the expected TXT value. Safe for concurrent use, tho a single Wait call
// at a time is the expected pattern.
type Waiter struct {
	resolver  resolver.Resolver
	walker    *delegation.Walker
	bootstrap string
	interval  time.Duration
}

// NewWaiter constructs a Waiter which starts its delegation walks at the bootstrap
// server, normally the system resolver.
func NewWaiter(r resolver.Resolver, bootstrap string) *Waiter {
	return &Waiter{
		resolver:  r,
		walker:    delegation.NewWalker(r),
		bootstrap: bootstrap,
		interval:  defaultInterval,
	}
}

// SetInterval overrides the default five second pause between polling iterations.
// Values <= 0 are ignored.
func (t *Waiter) SetInterval(d time.Duration) {
	if d > 0 {
		t.interval = d
	}
}

// Wait polls until every task is confirmed on every one of its authoritative servers,
// the deadline passes, or ctx is cancelled. It never terminates the process and never
// returns an error; non-propagation is an ordinary outcome reported in the Result.
//
// A deadline already in the past still permits one polling iteration so a caller asking
// "is it there right now?" gets an answer. Cancellation is honoured before each
// iteration and interrupts the inter-iteration sleep.
func (t *Waiter) Wait(ctx context.Context, tasks []Task, deadline time.Time) Result {
	pending := append([]Task{}, tasks...)
	unconfirmed := unresolvedChecks(pending) // In case we return before iterating

	for iteration := 1; ; iteration++ {
		if ctx.Err() != nil {
			log.Major("Propagation wait cancelled")
			return Result{Unconfirmed: unconfirmed}
		}

		pending, unconfirmed = t.iterate(ctx, pending)
		if len(pending) == 0 {
			return Result{Confirmed: true}
		}

		if iteration%progressEvery == 0 {
			log.Majorf("Still waiting after %d polls for: %s",
				iteration, describe(unconfirmed))
		}

		if !time.Now().Before(deadline) {
			log.Majorf("Propagation deadline reached with %d checks outstanding",
				len(unconfirmed))
			return Result{Unconfirmed: unconfirmed}
		}

		timer := time.NewTimer(t.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Major("Propagation wait cancelled")
			return Result{Unconfirmed: unconfirmed}
		case <-timer.C:
		}
	}
}

// iterate runs one polling cycle. The authoritative set is re-derived for every
// still-pending task - delegation can change while we wait so a set from a previous
// cycle is never trusted - then the full (task, server) cross-product is checked with
// one go-routine per check. A task survives to the next cycle unless every one of its
// servers confirmed in this one.
func (t *Waiter) iterate(ctx context.Context, tasks []Task) (still []Task, unconfirmed []Check) {
	checks := make([]Check, 0)
	resolved := make([]Task, 0, len(tasks))

	for _, task := range tasks {
		servers, err := t.walker.Authoritative(ctx, task.Record, t.bootstrap)
		if err != nil {
			log.Minorf("poll:%s:%s", task.Record, err.Error())
		}
		if len(servers) == 0 { // Unverifiable this cycle; try again next time
			still = append(still, task)
			unconfirmed = append(unconfirmed, Check{Task: task})
			continue
		}
		resolved = append(resolved, task)
		for _, server := range servers {
			checks = append(checks, Check{Task: task, Server: server})
		}
	}

	// Fan out. Each result lands in its own slot of a local buffer so aggregation
	// after the Wait() is a plain read with no locking.
	matched := make([]bool, len(checks))
	var wg sync.WaitGroup
	for ix, ck := range checks {
		wg.Add(1)
		go func(ix int, ck Check) {
			defer wg.Done()
			matched[ix] = t.check(ctx, ck)
		}(ix, ck)
	}
	wg.Wait()

	failed := make(map[Task]bool)
	for ix, ck := range checks {
		if !matched[ix] {
			failed[ck.Task] = true
			unconfirmed = append(unconfirmed, ck)
		}
	}

	for _, task := range resolved {
		if failed[task] {
			still = append(still, task)
		} else {
			log.Majorf("Confirmed %s on all authoritative servers",
				dnsutil.ChompCanonicalName(task.Record))
		}
	}

	return
}

// check asks one server directly for the task's TXT record. Any failure - transport
// error, bad rcode, missing or mismatched answer - simply leaves the check unsatisfied.
func (t *Waiter) check(ctx context.Context, ck Check) bool {
	q := dns.Question{Name: dns.CanonicalName(ck.Task.Record),
		Qtype: dns.TypeTXT, Qclass: dns.ClassINET}
	r, _, err := t.resolver.Query(ctx, resolver.NewExchangeConfig(), q,
		ck.Server, ck.Task.Record)
	if err != nil {
		log.Debugf("check:%s:%s", ck.String(),
			dnsutil.ShortenLookupError(err).Error())
		return false
	}
	if r.MsgHdr.Rcode != dns.RcodeSuccess {
		log.Debugf("check:%s:rcode %s", ck.String(),
			dnsutil.RcodeToString(r.MsgHdr.Rcode))
		return false
	}

	return dnsutil.TxtAnswerMatches(r, ck.Task.Value)
}

func unresolvedChecks(tasks []Task) []Check {
	checks := make([]Check, 0, len(tasks))
	for _, task := range tasks {
		checks = append(checks, Check{Task: task})
	}

	return checks
}

func describe(checks []Check) string {
	ar := make([]string, 0, len(checks))
	for _, ck := range checks {
		ar = append(ar, ck.String())
	}

	return strings.Join(ar, ", ")
}
