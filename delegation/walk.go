package delegation

import (
	"context"
	"fmt"
	"strings"

	"github.com/miekg/dns"

	"github.com/markdingo/propwait/dnsutil"
	"github.com/markdingo/propwait/log"
	"github.com/markdingo/propwait/resolver"
)

// Walker finds authoritative server sets. It merely contains a resolver so it is cheap
// to construct and safe to share between go-routines.
type Walker struct {
	resolver resolver.Resolver
}

// NewWalker constructs a Walker struct
func NewWalker(r resolver.Resolver) *Walker {
	return &Walker{resolver: r}
}

// cut holds the delegation material extracted from one NS response: every NS target name
// plus whatever glue addresses came along for the ride. It only lives for the step which
// produced it; glue is valid solely at the level it was served.
type cut struct {
	targets []string            // NS target names in response order, no dupes
	glue    map[string][]string // Canonical NS name -> addresses
}

// Authoritative returns the current authoritative name server addresses for domain by
// walking the delegation chain from the bootstrap server toward the full name. An NS
// question is sent for each suffix, root-most first, and each response either supplies a
// new delegation to follow or leaves the walk where it is.
//
// An empty list with a nil error means no NS records were found anywhere along the walk.
// Callers must treat that as "not yet verifiable" rather than a failure - a domain in an
// active DNS-01 flow can gain its delegation non-atomically. A non-nil error is always a
// *Error identifying the suffix that failed and why.
func (t *Walker) Authoritative(ctx context.Context, domain, bootstrap string) ([]string, error) {
	name := dns.CanonicalName(domain)
	labels := dns.SplitDomainName(name)
	server := bootstrap

	var authority cut // Deepest cut seen so far

	for i := len(labels) - 1; i >= 0; i-- {
		suffix := dns.CanonicalName(strings.Join(labels[i:], "."))
		q := dns.Question{Name: suffix, Qtype: dns.TypeNS, Qclass: dns.ClassINET}
		r, _, err := t.resolver.Query(ctx, resolver.NewExchangeConfig(), q, server, suffix)
		if err != nil {
			return nil, &Error{Reason: classifyExchange(err), Zone: suffix,
				Server: server, Err: err}
		}

		switch r.MsgHdr.Rcode {
		case dns.RcodeSuccess:
		case dns.RcodeNameError:
			return nil, &Error{Reason: NXDomain, Zone: suffix, Server: server}
		default:
			return nil, &Error{Reason: Malformed, Zone: suffix, Server: server,
				Err: fmt.Errorf("unexpected rcode %s",
					dnsutil.RcodeToString(r.MsgHdr.Rcode))}
		}

		c := extractCut(r)
		if len(c.targets) == 0 { // No cut at this label - delegation unchanged
			log.Minorf("walk:%s @ %s no delegation, continuing",
				dnsutil.ChompCanonicalName(suffix), server)
			continue
		}

		log.Minorf("walk:%s @ %s NS=%s glue=%d",
			dnsutil.ChompCanonicalName(suffix), server,
			strings.Join(c.targets, ","), len(c.glue))
		authority = c
		server = t.nextServer(ctx, c, server)
	}

	if len(authority.targets) == 0 {
		return nil, nil // Not yet verifiable
	}

	return t.resolveTargets(ctx, authority), nil
}

// extractCut gathers the delegation material from a response. NS targets come from the
// first section, in authority/additional/answer priority order, which contains any NS
// records. Glue addresses are collected from all three sections. Every NS record at the
// cut contributes a target - a parent serving multiple NS records delegates to all of
// them, not to whichever happened to be last in the packet.
func extractCut(m *dns.Msg) (c cut) {
	c.glue = make(map[string][]string)
	sections := [][]dns.RR{m.Ns, m.Extra, m.Answer}

	for _, section := range sections {
		for _, rr := range section {
			switch rrt := rr.(type) {
			case *dns.A:
				name := dns.CanonicalName(rrt.Hdr.Name)
				c.glue[name] = append(c.glue[name], rrt.A.String())
			case *dns.AAAA:
				name := dns.CanonicalName(rrt.Hdr.Name)
				c.glue[name] = append(c.glue[name], rrt.AAAA.String())
			}
		}
	}

	seen := make(map[string]struct{})
	for _, section := range sections {
		for _, rr := range section {
			if ns, ok := rr.(*dns.NS); ok {
				target := dns.CanonicalName(ns.Ns)
				if _, dupe := seen[target]; !dupe {
					seen[target] = struct{}{}
					c.targets = append(c.targets, target)
				}
			}
		}
		if len(c.targets) > 0 { // Higher priority section wins
			return
		}
	}

	return
}

// nextServer picks the query target for the next step down the chain. Glue is preferred
// as it avoids a resolution round-trip; failing that the NS names are resolved in order
// until one produces an address. If nothing resolves the current server is retained -
// the walk may still conclude usefully if a later label answers.
func (t *Walker) nextServer(ctx context.Context, c cut, current string) string {
	for _, target := range c.targets {
		if addrs := c.glue[target]; len(addrs) > 0 {
			return addrs[0]
		}
	}

	for _, target := range c.targets {
		addrs, err := t.resolver.LookupIPAddr(ctx, target)
		if err != nil {
			log.Minorf("walk:cannot resolve NS %s:%s",
				dnsutil.ChompCanonicalName(target),
				dnsutil.ShortenLookupError(err).Error())
			continue
		}
		if len(addrs) > 0 {
			return addrs[0].String()
		}
	}

	return current
}

// resolveTargets converts the final NS target set into addresses, using glue where the
// parent supplied it and the helper resolver otherwise. Targets which fail to resolve
// are skipped rather than fatal; lameness is not uncommon and a domain functions so long
// as at least one server answers.
func (t *Walker) resolveTargets(ctx context.Context, c cut) []string {
	servers := make([]string, 0, len(c.targets))
	seen := make(map[string]struct{})

	add := func(addr string) {
		if _, dupe := seen[addr]; !dupe {
			seen[addr] = struct{}{}
			servers = append(servers, addr)
		}
	}

	for _, target := range c.targets {
		if addrs := c.glue[target]; len(addrs) > 0 {
			for _, addr := range addrs {
				add(addr)
			}
			continue
		}

		addrs, err := t.resolver.LookupIPAddr(ctx, target)
		if err != nil {
			log.Minorf("walk:lame NS %s:%s",
				dnsutil.ChompCanonicalName(target),
				dnsutil.ShortenLookupError(err).Error())
			continue
		}
		for _, ip := range addrs {
			add(ip.String())
		}
	}

	return servers
}
