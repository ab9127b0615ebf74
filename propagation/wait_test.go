package propagation

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/propwait/log"
	"github.com/markdingo/propwait/mock"
	mockresolver "github.com/markdingo/propwait/mock/resolver"
)

const (
	bootstrap = "127.0.0.1"
	record    = "_acme-challenge.example.com."
	value     = "dGhpcyBpcyBhIGNoYWxsZW5nZQ"
)

var task = Task{Domain: "example.com", Record: record, Value: value}

func noerror(answer, ns, extra []string) *mockresolver.Response {
	return &mockresolver.Response{Msg: mockresolver.Msg(dns.RcodeSuccess, answer, ns, extra)}
}

func empty() *mockresolver.Response {
	return noerror(nil, nil, nil)
}

func txt(v string) *mockresolver.Response {
	return noerror([]string{record + ` 300 IN TXT "` + v + `"`}, nil, nil)
}

// scriptDelegation scripts the walk from the bootstrap down to the record with the
// supplied example.com name servers. Servers are 192.0.2.10, 192.0.2.11, ... in NS
// order with glue for all of them.
func scriptDelegation(res interface {
	SetResponse(string, uint16, string, *mockresolver.Response)
}, count int) (servers []string) {
	res.SetResponse(bootstrap, dns.TypeNS, "com.", noerror(nil,
		[]string{"com. 172800 IN NS a.gtld.net."},
		[]string{"a.gtld.net. 172800 IN A 192.0.2.1"}))

	names := []string{"ns1", "ns2", "ns3"}[:count]
	var ns, extra []string
	for ix, n := range names {
		addr := fmt.Sprintf("192.0.2.1%d", ix)
		ns = append(ns, "example.com. 172800 IN NS "+n+".example.com.")
		extra = append(extra, n+".example.com. 172800 IN A "+addr)
		servers = append(servers, addr)
	}
	res.SetResponse("192.0.2.1", dns.TypeNS, "example.com.", noerror(nil, ns, extra))
	res.SetResponse(servers[0], dns.TypeNS, record, empty())

	return
}

func TestWaitConfirmsImmediately(t *testing.T) {
	log.SetLevel(log.SilentLevel)
	res := mockresolver.NewResolver()
	servers := scriptDelegation(res, 1)
	res.SetResponse(servers[0], dns.TypeTXT, record, txt(value))

	w := NewWaiter(res, bootstrap)
	w.SetInterval(10 * time.Millisecond)
	result := w.Wait(context.Background(), []Task{task}, time.Now().Add(5*time.Second))

	if !result.Confirmed {
		t.Fatal("Expected confirmation, outstanding:", result.Unconfirmed)
	}
	if res.QueryCount(servers[0], dns.TypeTXT, record) != 1 {
		t.Error("A matching server should only be asked once")
	}
}

func TestWaitRequiresAllServers(t *testing.T) {
	// One server has the record, its sibling still answers NOERROR with an empty
	// answer section. The task must stay pending until the sibling catches up.
	log.SetLevel(log.SilentLevel)
	res := mockresolver.NewResolver()
	servers := scriptDelegation(res, 2)
	res.SetResponse(servers[0], dns.TypeTXT, record, txt(value))
	res.SetResponse(servers[1], dns.TypeTXT, record, empty())

	flipped := time.AfterFunc(60*time.Millisecond, func() {
		res.SetResponse(servers[1], dns.TypeTXT, record, txt(value))
	})
	defer flipped.Stop()

	w := NewWaiter(res, bootstrap)
	w.SetInterval(10 * time.Millisecond)
	result := w.Wait(context.Background(), []Task{task}, time.Now().Add(5*time.Second))

	if !result.Confirmed {
		t.Fatal("Expected eventual confirmation, outstanding:", result.Unconfirmed)
	}
	if res.QueryCount(servers[1], dns.TypeTXT, record) < 2 {
		t.Error("Laggard server should have been re-checked across iterations")
	}
}

func TestWaitExpiredDeadline(t *testing.T) {
	// A deadline already in the past permits exactly one iteration - a caller
	// asking "is it there right now?" still gets an answer.
	log.SetLevel(log.SilentLevel)
	res := mockresolver.NewResolver()
	servers := scriptDelegation(res, 1)
	res.SetResponse(servers[0], dns.TypeTXT, record, empty())

	w := NewWaiter(res, bootstrap)
	w.SetInterval(10 * time.Millisecond)
	result := w.Wait(context.Background(), []Task{task}, time.Now().Add(-time.Hour))

	if result.Confirmed {
		t.Fatal("Nothing should have confirmed")
	}
	if got := res.QueryCount(servers[0], dns.TypeTXT, record); got != 1 {
		t.Error("Expected exactly one check pass, got", got)
	}
	if len(result.Unconfirmed) != 1 || result.Unconfirmed[0].Server != servers[0] {
		t.Error("Unconfirmed should name the laggard server, got", result.Unconfirmed)
	}
}

func TestWaitCancelledBeforeCall(t *testing.T) {
	log.SetLevel(log.SilentLevel)
	res := mockresolver.NewResolver()
	servers := scriptDelegation(res, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWaiter(res, bootstrap)
	result := w.Wait(ctx, []Task{task}, time.Now().Add(time.Hour))

	if result.Confirmed {
		t.Fatal("Cancelled wait must not confirm")
	}
	if got := res.QueryCount(servers[0], dns.TypeTXT, record); got != 0 {
		t.Error("Pre-fired cancellation should prevent any checks, got", got)
	}
	if len(result.Unconfirmed) != 1 || len(result.Unconfirmed[0].Server) != 0 {
		t.Error("Unconfirmed should report the unchecked task, got", result.Unconfirmed)
	}
}

func TestWaitCancelInterruptsSleep(t *testing.T) {
	// With a long interval the cancellation must interrupt the sleep itself, not
	// wait for the next iteration boundary.
	log.SetLevel(log.SilentLevel)
	res := mockresolver.NewResolver()
	servers := scriptDelegation(res, 1)
	res.SetResponse(servers[0], dns.TypeTXT, record, empty())

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	w := NewWaiter(res, bootstrap)
	w.SetInterval(time.Minute)
	start := time.Now()
	result := w.Wait(ctx, []Task{task}, time.Now().Add(time.Hour))

	if result.Confirmed {
		t.Fatal("Cancelled wait must not confirm")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Error("Cancellation should interrupt the sleep, took", elapsed)
	}
}

func TestWaitUnresolvableStaysPending(t *testing.T) {
	// No delegation exists anywhere for the record. The task is "not yet
	// verifiable": it must stay pending rather than abort the wait.
	log.SetLevel(log.SilentLevel)
	res := mockresolver.NewResolver()
	res.SetResponse(bootstrap, dns.TypeNS, "com.", empty())
	res.SetResponse(bootstrap, dns.TypeNS, "example.com.", empty())
	res.SetResponse(bootstrap, dns.TypeNS, record, empty())

	w := NewWaiter(res, bootstrap)
	w.SetInterval(10 * time.Millisecond)
	result := w.Wait(context.Background(), []Task{task}, time.Now().Add(100*time.Millisecond))

	if result.Confirmed {
		t.Fatal("Unverifiable task must not confirm")
	}
	if len(result.Unconfirmed) != 1 || len(result.Unconfirmed[0].Server) != 0 {
		t.Error("Unconfirmed should flag the record as unverifiable, got",
			result.Unconfirmed)
	}
}

func TestWaitMultipleTasks(t *testing.T) {
	log.SetLevel(log.SilentLevel)
	res := mockresolver.NewResolver()
	servers := scriptDelegation(res, 1)
	res.SetResponse(servers[0], dns.TypeTXT, record, txt(value))

	other := Task{Domain: "other.example.com",
		Record: "_acme-challenge.other.example.com.", Value: "second-value"}
	res.SetResponse(servers[0], dns.TypeNS, "other.example.com.", empty())
	res.SetResponse(servers[0], dns.TypeNS, other.Record, empty())
	res.SetResponse(servers[0], dns.TypeTXT, other.Record,
		noerror([]string{other.Record + ` 300 IN TXT "second-value"`}, nil, nil))

	w := NewWaiter(res, bootstrap)
	w.SetInterval(10 * time.Millisecond)
	result := w.Wait(context.Background(), []Task{task, other},
		time.Now().Add(5*time.Second))

	if !result.Confirmed {
		t.Fatal("Both tasks should confirm, outstanding:", result.Unconfirmed)
	}
}

func TestWaitProgressReport(t *testing.T) {
	// Progress is reported every 30 iterations so an operator watching the log can
	// see which checks are stuck.
	out := &mock.IOWriter{}
	log.SetOut(out)
	log.SetLevel(log.MajorLevel)
	defer log.SetLevel(log.SilentLevel)

	res := mockresolver.NewResolver()
	servers := scriptDelegation(res, 1)
	res.SetResponse(servers[0], dns.TypeTXT, record, empty())

	w := NewWaiter(res, bootstrap)
	w.SetInterval(time.Millisecond)
	result := w.Wait(context.Background(), []Task{task},
		time.Now().Add(500*time.Millisecond))

	if result.Confirmed {
		t.Fatal("Nothing should have confirmed")
	}
	got := out.String()
	if !strings.Contains(got, "Still waiting after 30 polls") {
		t.Error("Expected a progress report in the log, got", got)
	}
	if !strings.Contains(got, record+" @ "+servers[0]) {
		t.Error("Progress report should name the stuck check, got", got)
	}
}
