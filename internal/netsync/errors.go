package netsync

import "errors"

var (
	// ErrBind is returned once when the host cannot open its port. There
	// is no retry.
	ErrBind = errors.New("cannot bind match port")
	// ErrDisconnected ends the match for the side that lost its socket
	ErrDisconnected = errors.New("disconnected")
	// ErrProtocol marks a message that was dropped as malformed
	ErrProtocol = errors.New("protocol error")

	ErrMatchFull   = errors.New("match is full")
	ErrBadTicket   = errors.New("invalid join ticket")
	ErrBadPassword = errors.New("wrong match password")
)
