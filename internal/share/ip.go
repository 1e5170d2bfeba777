package share

import (
	"fmt"
	"log"
	"net"
	"strconv"
)

// iface is the part of a network interface the address choice looks at.
type iface struct {
	flags net.Flags
	addrs []net.Addr
}

// OutgoingIP returns the address viewers should dial: the source address of
// the default route when there is one, otherwise the first usable IPv4
// address of an up interface, otherwise loopback.
func OutgoingIP() net.IP {
	if ip := routedIP(); ip != nil {
		return ip
	}
	return pickIPv4(interfaces())
}

func routedIP() net.IP {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || !usable(addr.IP) {
		return nil
	}
	return addr.IP.To4()
}

func interfaces() []iface {
	list, err := net.Interfaces()
	if err != nil {
		log.Printf("[SHARE] Listing interfaces: %v", err)
		return nil
	}
	out := make([]iface, 0, len(list))
	for _, it := range list {
		addrs, err := it.Addrs()
		if err != nil {
			continue
		}
		out = append(out, iface{flags: it.Flags, addrs: addrs})
	}
	return out
}

func usable(ip net.IP) bool {
	ip4 := ip.To4()
	return ip4 != nil && !ip4.IsLoopback() && !ip4.IsLinkLocalUnicast() && !ip4.IsUnspecified()
}

// pickIPv4 returns the first usable IPv4 address on an up, non-loopback
// interface, or 127.0.0.1 when there is none.
func pickIPv4(ifaces []iface) net.IP {
	for _, it := range ifaces {
		if it.flags&net.FlagUp == 0 || it.flags&net.FlagLoopback != 0 {
			continue
		}
		for _, a := range it.addrs {
			if ipnet, ok := a.(*net.IPNet); ok && usable(ipnet.IP) {
				return ipnet.IP.To4()
			}
		}
	}
	log.Println("[SHARE] No LAN address found, sharing on loopback")
	return net.IPv4(127, 0, 0, 1).To4()
}

// Link returns the websocket URL viewers connect to.
func Link(ip net.IP, port int) string {
	return fmt.Sprintf("ws://%s/ws", net.JoinHostPort(ip.String(), strconv.Itoa(port)))
}
