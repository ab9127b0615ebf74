package resolver

import (
	"context"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/propwait/dnsutil"
)

const (
	defaultSingleExchangeTimeout = 4 * time.Second // Also applies to Lookup* functions
	defaultQueryTries            = 2               // Total number of exchange attempts
)

// ExchangeConfig expresses the settings which are passed down to the miekg Client
// struct. Only the ones relevant to propwait have been transferred across. It's defined
// as an interface rather than a struct to enforce the use of NewExchangeConfig which
// sets defaults.
type ExchangeConfig interface {
	Net() string
	UDPSize() uint16
}

type exchangeConfig struct {
	net     string
	udpSize uint16
}

func (t *exchangeConfig) Net() string     { return t.net }
func (t *exchangeConfig) UDPSize() uint16 { return t.udpSize }

func NewExchangeConfig() *exchangeConfig {
	return &exchangeConfig{net: dnsutil.UDPNetwork, udpSize: dnsutil.MaxUDPSize}
}

// Resolver represents all of the resolver functions used by propwait which reach out to
// the internet.
//
// Based on the claim that both net.Resolver and miekg.Client are concurrency safe,
// implementations of this interface must also ensure concurrency safety as the
// propagation poller issues queries from multiple go-routines.
type Resolver interface {

	// LookupIPAddr is similar to net.Resolver.LookupIPAddr. It is the
	// "non-authoritative helper resolution" used to convert name server names into
	// addresses once a delegation walk has produced final answers.
	//
	// LookupIPAddr derives a WithDeadline context from the supplied context so there
	// is no need for the caller to worry about timeouts.
	LookupIPAddr(context.Context, string) ([]net.IP, error)

	// SingleExchange is a shim for the github.com/miekg/dns ExchangeContext function
	// which makes a single exchange attempt with the server; no retries, no fallback
	// to TCP.
	//
	// SingleExchange sets the dns.Client.Timeout so the caller doesn't have to worry
	// about timeouts via context, or whatever.
	//
	// The dns.Msg must be fully formed with all flags and Id set as needed by the
	// caller.
	//
	// logName is only used for logging purposes to help identify the server (which
	// is normally a bare ip address by the time it gets here).
	SingleExchange(ctx context.Context, c ExchangeConfig, q *dns.Msg,
		server, logName string) (r *dns.Msg, rtt time.Duration, err error)

	// Query is a wrapper around SingleExchange which creates a fully-formed,
	// non-recursive dns.Msg for the question and retries the exchange a bounded
	// number of times on transport errors. There is deliberately no TCP fallback:
	// propwait only ever asks small questions (NS, TXT) of authoritative servers and
	// a truncated response is handled by the caller as "not usable this iteration".
	Query(ctx context.Context, c ExchangeConfig, q dns.Question,
		server, logName string) (r *dns.Msg, rtt time.Duration, err error)
}
