package dnsutil

const (
	UDPNetwork = "udp" // Case is important to miekg so a const avoids pernickety errors

	MaxUDPSize uint16 = 1232 // Generally suggested as universally safe in edns0
)
