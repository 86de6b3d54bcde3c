package iftable

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/HerbHall/snmpautoload/internal/snmp"
)

// ipAddresses collects interface addresses from ipAddrTable (IPv4) and
// ipAddressTable (IPv4 and IPv6), keyed by ifIndex in discovery order.
type ipAddresses struct {
	v4 map[string][]string
	v6 map[string][]string
}

func newIPAddresses(ipAddr, ipAddress *snmp.Table) *ipAddresses {
	ips := &ipAddresses{
		v4: make(map[string][]string),
		v6: make(map[string][]string),
	}

	if ipAddr != nil {
		for _, idx := range ipAddr.Indexes() {
			row, _ := ipAddr.Row(idx)
			ifIndex := row.Safe(snmp.IPAdEntIfIndex.Name)
			if addr, err := netip.ParseAddr(idx); err == nil && addr.Is4() && ifIndex != "" {
				ips.add(ips.v4, ifIndex, addr.String())
			}
		}
	}

	if ipAddress != nil {
		for _, idx := range ipAddress.Indexes() {
			row, _ := ipAddress.Row(idx)
			ifIndex := row.Safe(snmp.IPAddressIfIndex.Name)
			addr, ok := parseInetAddressIndex(idx)
			if !ok || ifIndex == "" {
				continue
			}
			if addr.Is4() {
				ips.add(ips.v4, ifIndex, addr.String())
			} else {
				ips.add(ips.v6, ifIndex, addr.String())
			}
		}
	}
	return ips
}

func (ips *ipAddresses) add(m map[string][]string, ifIndex, addr string) {
	for _, existing := range m[ifIndex] {
		if existing == addr {
			return
		}
	}
	m[ifIndex] = append(m[ifIndex], addr)
}

// IPv4 returns the comma-joined IPv4 addresses of an interface.
func (ips *ipAddresses) IPv4(ifIndex string) string {
	return strings.Join(ips.v4[ifIndex], ", ")
}

// IPv6 returns the comma-joined IPv6 addresses of an interface.
func (ips *ipAddresses) IPv6(ifIndex string) string {
	return strings.Join(ips.v6[ifIndex], ", ")
}

// parseInetAddressIndex decodes an ipAddressTable index of the form
// addrType.addrLen.octet... (InetAddressType, InetAddress). Zoned types carry
// a four-octet zone suffix that is dropped.
func parseInetAddressIndex(index string) (netip.Addr, bool) {
	parts := strings.Split(index, ".")
	if len(parts) < 2 {
		return netip.Addr{}, false
	}
	addrType, err1 := strconv.Atoi(parts[0])
	n, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || len(parts) < 2+n {
		return netip.Addr{}, false
	}

	octets := make([]byte, 0, n)
	for _, p := range parts[2 : 2+n] {
		b, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return netip.Addr{}, false
		}
		octets = append(octets, byte(b))
	}

	switch {
	case (addrType == 1 && n == 4) || (addrType == 3 && n == 8):
		return netip.AddrFrom4([4]byte(octets[:4])), true
	case (addrType == 2 && n == 16) || (addrType == 4 && n == 20):
		return netip.AddrFrom16([16]byte(octets[:16])), true
	}
	return netip.Addr{}, false
}
