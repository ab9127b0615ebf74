package resolver

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/propwait/log"
)

func (t *resolver) SingleExchange(ctx context.Context, c ExchangeConfig, q *dns.Msg,
	server, logName string) (r *dns.Msg, rtt time.Duration, err error) {
	if len(q.Question) != 1 {
		err = fmt.Errorf("SingleExchange Message contains %d Question(s), expect one",
			len(q.Question))
		return
	}

	question := q.Question[0]
	client := &dns.Client{Timeout: t.singleExchangeTimeout}
	client.Net = c.Net()
	client.UDPSize = c.UDPSize()
	_, _, e := net.SplitHostPort(server) // Coerce a service onto the name if
	if e != nil {                        // it hasn't got one
		server = net.JoinHostPort(server, "domain")
	}

	if log.IfDebug() {
		LogExchangeQ(client.Net, logName, server, question)
	}

	r, rtt, err = client.ExchangeContext(ctx, q, server)

	if log.IfDebug() {
		LogExchangeA(server, question, r, err)
	}

	return
}

func (t *resolver) Query(ctx context.Context, c ExchangeConfig, question dns.Question,
	server, logName string) (r *dns.Msg, rtt time.Duration, err error) {
	query := new(dns.Msg)
	query.Id = dns.Id()
	query.RecursionDesired = false // These are direct questions to authoritative
	query.SetEdns0(c.UDPSize(), false)
	query.Question = append(query.Question, question)

	// The SingleExchange timeout bounds each attempt so the worst case here is
	// queryTries * singleExchangeTimeout, which is what the polling layer budgets
	// for. Retrying within Query only covers transport errors; a response with an
	// unwelcome rcode is still a response and is returned to the caller to
	// interpret.
	for tries := 0; tries < t.queryTries; tries++ {
		r, rtt, err = t.SingleExchange(ctx, c, query, server, logName)
		if err == nil {
			return
		}
		if ctx.Err() != nil { // Cancellation is not worth a retry
			return
		}
	}

	return // No valid response from the server
}
