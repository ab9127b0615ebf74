package resolver

import (
	"github.com/miekg/dns"
)

// RR parses a zone-file style RR string, panicking on error. Test-only convenience so
// scripted responses read like zone data.
func RR(s string) dns.RR {
	rr, err := dns.NewRR(s)
	if err != nil {
		panic("mock RR did not parse: " + s + ": " + err.Error())
	}

	return rr
}

// Msg assembles a response message from RR strings for the three sections.
func Msg(rcode int, answer, ns, extra []string) *dns.Msg {
	m := new(dns.Msg)
	m.MsgHdr.Rcode = rcode
	m.MsgHdr.Response = true
	for _, s := range answer {
		m.Answer = append(m.Answer, RR(s))
	}
	for _, s := range ns {
		m.Ns = append(m.Ns, RR(s))
	}
	for _, s := range extra {
		m.Extra = append(m.Extra, RR(s))
	}

	return m
}
