//go:build windows
// +build windows

package transport

import (
	"fmt"
	"net"
	"time"
)

// DefaultTCPPort is used in place of a Unix socket on Windows.
const DefaultTCPPort = "127.0.0.1:48732"

// CreatePlatformListener opens a TCP listener on localhost; Windows doesn't
// support Unix domain sockets reliably, and loopback TCP is still
// sub-millisecond for this purpose.
func CreatePlatformListener(socketPath string) (net.Listener, error) {
	listener, err := net.Listen("tcp", DefaultTCPPort)
	if err != nil {
		return nil, fmt.Errorf("listen tcp %s: %w", DefaultTCPPort, err)
	}
	return listener, nil
}

// ConnectPlatform dials the loopback TCP port.
func ConnectPlatform(socketPath string) (net.Conn, error) {
	return net.DialTimeout("tcp", DefaultTCPPort, time.Second)
}

// GetPlatformAddress returns the address string for logging.
func GetPlatformAddress(socketPath string) string {
	return DefaultTCPPort + " (TCP localhost - Windows mode)"
}
