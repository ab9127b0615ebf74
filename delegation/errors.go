package delegation

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Reason classifies why a delegation walk could not be completed.
type Reason int

const (
	NXDomain  Reason = iota // Some suffix of the domain does not exist
	Timeout                 // A query round-trip got no response
	Malformed               // A response arrived but could not be used
)

func (t Reason) String() string {
	switch t {
	case NXDomain:
		return "NXDomain"
	case Timeout:
		return "Timeout"
	case Malformed:
		return "Malformed"
	}

	return fmt.Sprintf("Reason-%d", int(t))
}

// Error reports a failed walk along with the suffix and server in play at the time. Only
// NXDomain is authoritative; Timeout and Malformed are transient and callers normally
// just try again on their next cycle.
type Error struct {
	Reason Reason
	Zone   string // Suffix being queried when the walk failed
	Server string // Server the query was sent to
	Err    error  // Underlying error, if any
}

func (t *Error) Error() string {
	s := fmt.Sprintf("delegation %s: %s at %s", t.Reason, t.Zone, t.Server)
	if t.Err != nil {
		s += ": " + t.Err.Error()
	}

	return s
}

func (t *Error) Unwrap() error {
	return t.Err
}

// classifyExchange separates "no response" from "unusable response". miekg surfaces
// timeouts as net.Error but string matching is kept as a fallback for wrapped errors, as
// dnsutil.ShortenLookupError does.
func classifyExchange(err error) Reason {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Timeout
	}
	if strings.Contains(err.Error(), "timeout") {
		return Timeout
	}

	return Malformed
}
