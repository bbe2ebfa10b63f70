package server

import (
	"fmt"
	"os"

	gnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// PortReaper finds and terminates stray processes listening on a port. It is
// a crash-recovery fallback: when the in-memory server handle was lost but a
// socket is still held, Stop uses it to free the port.
type PortReaper interface {
	// Reap kills listeners on port and returns how many were terminated.
	Reap(port int) (int, error)
}

// NopReaper never finds anything.
type NopReaper struct{}

func (NopReaper) Reap(int) (int, error) { return 0, nil }

// ProcessReaper inspects the host's TCP table and kills foreign listeners on
// the port. The current process is never touched.
type ProcessReaper struct{}

func (ProcessReaper) Reap(port int) (int, error) {
	conns, err := gnet.Connections("tcp")
	if err != nil {
		return 0, fmt.Errorf("failed to list connections: %w", err)
	}

	self := int32(os.Getpid())
	killed := 0
	for _, conn := range conns {
		if conn.Status != "LISTEN" || conn.Laddr.Port != uint32(port) {
			continue
		}
		if conn.Pid <= 0 || conn.Pid == self {
			continue
		}
		proc, err := process.NewProcess(conn.Pid)
		if err != nil {
			continue
		}
		if err := proc.Kill(); err != nil {
			continue
		}
		killed++
	}

	return killed, nil
}
