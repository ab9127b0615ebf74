package main

import (
	"net"

	"github.com/miekg/dns"
)

const resolvConf = "/etc/resolv.conf"

// defaultBootstrap returns the system's first configured resolver. Falls back to
// localhost when resolv.conf is absent or empty, which at least fails fast and visibly
// rather than silently querying some hardwired public resolver.
func defaultBootstrap() string {
	cc, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil || len(cc.Servers) == 0 {
		return "127.0.0.1"
	}

	return net.JoinHostPort(cc.Servers[0], cc.Port)
}
