package remote

import (
	"encoding/gob"
)

// Error is the only error type that crosses the wire. Two errors with the
// same message compare equal, so sentinels survive a round trip.
type Error struct {
	Message string
}

func (e Error) Error() string {
	return e.Message
}

func NewError(message string) Error {
	return Error{
		Message: message,
	}
}

var (
	ErrUnregisteredType  = NewError("unregistered type request received")
	ErrMethodNotFound    = NewError("method not found")
	ErrRequestNotFound   = NewError("request not found")
	ErrServiceNotFound   = NewError("service not found")
	ErrProxyTypeNotFound = NewError("proxy type not found")
	ErrInstanceNotFound  = NewError("instance not found")
	ErrClientClosed      = NewError("client closed")
	ErrConnectionLost    = NewError("connection lost")
)

func init() {
	gob.Register(NewError(""))
}
