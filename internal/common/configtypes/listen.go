package configtypes

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ListenPort extracts and range-checks the port of a listen address.
// Accepted forms are "8080", ":8080" and "host:8080".
func ListenPort(listen string) (int, error) {
	if listen == "" {
		return 0, fmt.Errorf("listen address is empty")
	}

	portStr := listen
	if strings.Contains(listen, ":") {
		_, p, err := net.SplitHostPort(listen)
		if err != nil {
			return 0, fmt.Errorf("invalid listen address format: %s: %w", listen, err)
		}
		portStr = p
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port in listen address: %s", listen)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return port, nil
}

// NormalizeListen returns the address in host:port form.
func NormalizeListen(listen string) (string, error) {
	port, err := ListenPort(listen)
	if err != nil {
		return "", err
	}
	host := ""
	if strings.Contains(listen, ":") {
		host, _, _ = net.SplitHostPort(listen)
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}
