package netsync

import (
	"fmt"
	"net"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

// JoinURL is what a joining player types or scans: the host's LAN
// address and match port
func JoinURL(port int) string {
	return "http://" + net.JoinHostPort(lanIP(), strconv.Itoa(port))
}

// JoinQR renders url as a QR code made of half-block characters, small
// enough for a terminal
func JoinQR(url string) (string, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("join qr: %w", err)
	}
	return q.ToSmallString(false), nil
}

// lanIP picks the first non-loopback IPv4 address
func lanIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "127.0.0.1"
}
