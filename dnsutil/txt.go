package dnsutil

import (
	"strings"

	"github.com/miekg/dns"
)

// TxtValue joins the character-string segments of a TXT RR back into the single value
// they encode. A TXT value longer than 255 octets is split into multiple segments on the
// wire, so comparing against any single segment would be wrong.
func TxtValue(rr *dns.TXT) string {
	return strings.Join(rr.Txt, "")
}

// TxtAnswerMatches returns true if any TXT RR in the answer section carries exactly the
// expected value. Comparison is byte-for-byte and case-sensitive as challenge values are
// base64url material, not domain names.
func TxtAnswerMatches(m *dns.Msg, expect string) bool {
	for _, rr := range m.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			if TxtValue(txt) == expect {
				return true
			}
		}
	}

	return false
}
