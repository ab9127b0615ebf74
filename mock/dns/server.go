// Package dns provides miekg-backed in-process DNS servers for exchange tests.
package dns

import (
	"github.com/miekg/dns"
)

// StartServer starts a miekg DNS server on the supplied address and waits until it is
// ready to accept queries. Test-only, so setup failures panic rather than return.
func StartServer(net, serverAddr string, h dns.Handler) *dns.Server {
	srv := &dns.Server{Net: net, Addr: serverAddr, Handler: h}
	hasStarted := make(chan struct{})
	srv.NotifyStartedFunc = func() {
		hasStarted <- struct{}{}
	}

	go func() {
		err := srv.ListenAndServe()
		defer close(hasStarted)
		if err != nil { // Shutdown or real error?
			panic("Setup of mock DNS server failed:" + err.Error())
		}
	}()

	<-hasStarted // Wait for server, one way or the other

	return srv
}
