package propagation

// Task is one validation record an orchestrator wants proven visible. The orchestrator
// owns the values; this package only ever reads them.
type Task struct {
	Domain string // Domain being validated, for reporting only
	Record string // TXT record name, typically _acme-challenge.<domain>
	Value  string // Expected record content, compared byte-for-byte
}

// Check is one (task, server) pair awaiting verification. Server is empty when the
// task's authoritative set could not be derived at all, in which case the record is
// unverifiable rather than unconfirmed at a particular server.
type Check struct {
	Task   Task
	Server string
}

func (t Check) String() string {
	if len(t.Server) == 0 {
		return t.Task.Record + " (no authoritative servers)"
	}

	return t.Task.Record + " @ " + t.Server
}

// Result is the outcome of a Wait. When Confirmed is false, Unconfirmed lists every
// (task, server) pair which was still outstanding so a caller can explain a timeout.
type Result struct {
	Confirmed   bool
	Unconfirmed []Check
}
