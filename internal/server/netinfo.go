package server

import (
	"fmt"
	"net"
	"os"
	"sort"

	gnet "github.com/shirou/gopsutil/v3/net"
)

// NetworkInfo describes how other devices on the network can reach the
// server.
type NetworkInfo struct {
	IPAddress    string   `json:"ip_address"`
	Port         int      `json:"port"`
	URL          string   `json:"url"`
	AllAddresses []string `json:"all_addresses"`
	Hostname     string   `json:"hostname"`
}

// HostNetwork enumerates the host's addresses. Tests inject a fake.
type HostNetwork interface {
	Addresses() ([]string, error)
	Hostname() string
}

// InterfaceHostNetwork reads the real network interfaces.
type InterfaceHostNetwork struct{}

// Addresses returns the host's IPv4 addresses, loopback included, sorted and
// deduplicated.
func (InterfaceHostNetwork) Addresses() ([]string, error) {
	ifaces, err := gnet.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	seen := make(map[string]bool)
	var addrs []string
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			ip, _, err := net.ParseCIDR(addr.Addr)
			if err != nil {
				ip = net.ParseIP(addr.Addr)
			}
			if ip == nil || ip.To4() == nil {
				continue
			}
			s := ip.String()
			if !seen[s] {
				seen[s] = true
				addrs = append(addrs, s)
			}
		}
	}

	sort.Strings(addrs)
	return addrs, nil
}

func (InterfaceHostNetwork) Hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return name
}

// Describe builds the addressing info advertised to clients. The primary
// address is the first non-loopback one, falling back to localhost.
func Describe(hn HostNetwork, port int) NetworkInfo {
	addrs, err := hn.Addresses()
	if err != nil {
		addrs = nil
	}

	primary := "localhost"
	for _, a := range addrs {
		if !net.ParseIP(a).IsLoopback() {
			primary = a
			break
		}
	}

	return NetworkInfo{
		IPAddress:    primary,
		Port:         port,
		URL:          fmt.Sprintf("http://%s:%d", primary, port),
		AllAddresses: addrs,
		Hostname:     hn.Hostname(),
	}
}
