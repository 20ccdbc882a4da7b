package netutil

import (
	"net"
	"strconv"

	"github.com/pkg/errors"
)

// GetAvailablePortForAddress returns an open port on the specified address
func GetAvailablePortForAddress(address string) (int, error) {
	listener, err := net.Listen("tcp", net.JoinHostPort(address, "0"))
	if err != nil {
		return 0, errors.Wrap(err, "error listening on ephemeral port")
	}
	defer listener.Close()

	return ParsePort(listener.Addr().String())
}

// ParsePort extracts the port number from a host:port address
func ParsePort(address string) (int, error) {
	_, portString, err := net.SplitHostPort(address)
	if err != nil {
		return 0, err
	}

	port, err := strconv.Atoi(portString)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid port in %s", address)
	}
	if port < 0 || port > 65535 {
		return 0, errors.Errorf("port %d out of range", port)
	}
	return port, nil
}

// ListenAddress returns the address to bind for port on every interface
func ListenAddress(port int) string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(port))
}
