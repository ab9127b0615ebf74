package dnsutil

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// The Pretty* functions return a compact version of various dns structures. The standard
// String() methods are designed to be consistent with traditional dig-type output which
// is too verbose for debug traces.

// PrettyMsg returns a compact string representing the complete message.
func PrettyMsg(m *dns.Msg) string {
	h := m.MsgHdr
	flags := []string{}
	if h.Response {
		flags = append(flags, "qr")
	}
	if h.Authoritative {
		flags = append(flags, "aa")
	}
	if h.Truncated {
		flags = append(flags, "tc")
	}

	qTypes := make([]string, 0)
	aTypes := make([]string, 0)
	nTypes := make([]string, 0)
	eTypes := make([]string, 0)
	for _, q := range m.Question {
		qTypes = append(qTypes, TypeToString(q.Qtype))
	}
	for _, rr := range m.Answer {
		aTypes = append(aTypes, TypeToString(rr.Header().Rrtype))
	}
	for _, rr := range m.Ns {
		nTypes = append(nTypes, TypeToString(rr.Header().Rrtype))
	}
	for _, rr := range m.Extra {
		eTypes = append(eTypes, TypeToString(rr.Header().Rrtype))
	}
	return fmt.Sprintf("%d f=%s %s Q=%d-%s Ans=%d-%s Ns=%d-%s Extra=%d-%s",
		h.Id, strings.Join(flags, "+"), RcodeToString(h.Rcode),
		len(m.Question), strings.Join(qTypes, ","),
		len(m.Answer), strings.Join(aTypes, ","),
		len(m.Ns), strings.Join(nTypes, ","),
		len(m.Extra), strings.Join(eTypes, ","))
}

// PrettyQuestion returns a compact representation of the dns.Question
func PrettyQuestion(q dns.Question) string {
	return fmt.Sprintf("%s/%s %s",
		ClassToString(dns.Class(q.Qclass)),
		TypeToString(q.Qtype),
		q.Name)
}
