// Package resolver provides a programmable in-memory implementation of
// resolver.Resolver. Tests preload it with per-server exchange responses and lookup
// addresses then hand it to the delegation walker or propagation waiter. Unlike the real
// thing it never touches the network so tests are fast and deterministic.
package resolver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/propwait/dnsutil"
	"github.com/markdingo/propwait/log"
	"github.com/markdingo/propwait/resolver"
)

// Response is what a mock server "sends" for one (server, qtype, qname) key. If Err is
// set it is returned instead of a message, simulating a transport failure such as a
// timeout.
type Response struct {
	Msg *dns.Msg
	Err error

	queryCount int
}

type mockResolver struct {
	mu        sync.Mutex
	ips       map[string][]net.IP
	exchanges map[string]*Response
}

// NewResolver creates an empty mock resolver. Queries for which nothing has been set
// return a transport error, which real callers are required to treat as transient.
func NewResolver() *mockResolver {
	return &mockResolver{
		ips:       make(map[string][]net.IP),
		exchanges: make(map[string]*Response),
	}
}

// SetIPs defines the LookupIPAddr results for host. Replaces any previous setting.
func (t *mockResolver) SetIPs(host string, ips ...net.IP) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ips[dnsutil.ChompCanonicalName(host)] = ips
}

// SetResponse defines the exchange response for a qtype/qname question sent to server.
// Replacing an existing response carries its query count forward so QueryCount reflects
// all queries for the key, not just those served by the latest response.
func (t *mockResolver) SetResponse(server string, qType uint16, qName string, resp *Response) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := exchangeKey(server, qType, qName)
	if prev, ok := t.exchanges[key]; ok {
		resp.queryCount = prev.queryCount
	}
	t.exchanges[key] = resp
}

// QueryCount returns how often the matching exchange response has been served.
func (t *mockResolver) QueryCount(server string, qType uint16, qName string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if resp, ok := t.exchanges[exchangeKey(server, qType, qName)]; ok {
		return resp.queryCount
	}

	return 0
}

func exchangeKey(server string, qType uint16, qName string) string {
	if host, _, err := net.SplitHostPort(server); err == nil {
		server = host // Keys are stored sans service
	}

	return strings.Join([]string{server, dns.TypeToString[qType],
		dnsutil.ChompCanonicalName(qName)}, "|")
}

func (t *mockResolver) LookupIPAddr(ctx context.Context, host string) (ips []net.IP, err error) {
	t.mu.Lock()
	set, ok := t.ips[dnsutil.ChompCanonicalName(host)]
	t.mu.Unlock()

	addrs := make([]net.IPAddr, 0) // For logging purposes only
	if ok {
		ips = append(ips, set...)
		for _, ip := range set {
			addrs = append(addrs, net.IPAddr{IP: ip})
		}
	} else {
		err = fmt.Errorf("lookup %s: no such host", host)
	}
	if log.IfDebug() {
		resolver.LogIP(host, addrs, "mock", err)
	}

	return
}

func (t *mockResolver) SingleExchange(ctx context.Context, c resolver.ExchangeConfig,
	q *dns.Msg, server, logName string) (r *dns.Msg, rtt time.Duration, err error) {
	if len(q.Question) != 1 {
		err = fmt.Errorf("SingleExchange Message contains %d Question(s), expect one",
			len(q.Question))
		return
	}

	question := q.Question[0]
	if log.IfDebug() {
		resolver.LogExchangeQ(c.Net(), logName, server, question)
	}

	t.mu.Lock()
	resp, ok := t.exchanges[exchangeKey(server, question.Qtype, question.Name)]
	if ok {
		resp.queryCount++
	}
	t.mu.Unlock()

	if !ok || resp.Err != nil {
		err = fmt.Errorf("read udp %s: i/o timeout", server)
		if ok {
			err = resp.Err
		}
		if log.IfDebug() {
			resolver.LogExchangeA(server, question, nil, err)
		}
		return
	}

	r = resp.Msg.Copy() // Callers may hold the reply across SetResponse calls
	r.SetRcode(q, resp.Msg.MsgHdr.Rcode)
	if log.IfDebug() {
		resolver.LogExchangeA(server, question, r, nil)
	}

	return
}

// Query mirrors the real implementation apart from retries, which add nothing when the
// outcome is scripted.
func (t *mockResolver) Query(ctx context.Context, c resolver.ExchangeConfig,
	question dns.Question, server, logName string) (r *dns.Msg, rtt time.Duration, err error) {
	query := new(dns.Msg)
	query.Id = dns.Id()
	query.RecursionDesired = false
	query.SetEdns0(c.UDPSize(), false)
	query.Question = append(query.Question, question)

	return t.SingleExchange(ctx, c, query, server, logName)
}
