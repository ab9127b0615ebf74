package dns

import (
	"fmt"
	"sync"

	"github.com/miekg/dns"
)

// ExchangeResponse describes what the server replies with, regardless of the question.
type ExchangeResponse struct {
	Ignore    bool // Swallow the query to simulate a timeout
	Truncated bool
	Rcode     int
	Ns        []dns.RR
	Answer    []dns.RR
	Extra     []dns.RR

	QueryCount int // Times the handler served this ExchangeResponse
}

// ExchangeServer is a dumb dns.Handler for a single exchange which copies the configured
// response values into the reply message. It never inspects the question.
type ExchangeServer struct {
	mu        sync.Mutex
	resp      *ExchangeResponse
	lastQuery *dns.Msg
}

// LastQuery returns the most recent query message seen by the handler so tests can
// assert on flags such as RecursionDesired.
func (t *ExchangeServer) LastQuery() *dns.Msg {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastQuery
}

// SetResponse sets a new response for subsequent queries
func (t *ExchangeServer) SetResponse(r *ExchangeResponse) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resp = r
}

// GetResponse returns the current response as set
func (t *ExchangeServer) GetResponse() *ExchangeResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resp
}

// ServeDNS meets the interface definition for dns.Handler
func (t *ExchangeServer) ServeDNS(wtr dns.ResponseWriter, q *dns.Msg) {
	t.mu.Lock()
	resp := t.resp
	t.lastQuery = q.Copy()
	if resp != nil {
		resp.QueryCount++
	}
	t.mu.Unlock()
	if resp == nil {
		panic("resp == nil in mock exchange server")
	}
	if resp.Ignore {
		return
	}

	m := new(dns.Msg)
	m.SetRcode(q, resp.Rcode)
	if resp.Truncated {
		m.MsgHdr.Truncated = true
	} else if resp.Rcode == dns.RcodeSuccess { // Only populate if rcode is good
		m.Ns = resp.Ns
		m.Answer = resp.Answer
		m.Extra = resp.Extra
	}

	err := wtr.WriteMsg(m)
	if err != nil {
		fmt.Println("Alert: WriteMsg error:", err)
	}
}
