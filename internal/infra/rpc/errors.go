package rpc

import (
	"errors"
	"fmt"
)

// TransportError is returned when a call could not complete: connection
// failure, timeout, non-200 status or an undecodable body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RPCError is returned when the response carries a JSON-RPC "error" member.
type RPCError struct {
	Method  string
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %s: %d %s", e.Method, e.Code, e.Message)
}

// AppError is returned when the node answered but the result message is not
// "success". Message is the node's own text.
type AppError struct {
	Method  string
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Message)
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRPC reports whether err is a JSON-RPC error member.
func IsRPC(err error) bool {
	var re *RPCError
	return errors.As(err, &re)
}

// IsApplication reports whether the node answered but rejected the call,
// either with a non-success result message or a JSON-RPC error member.
func IsApplication(err error) bool {
	var ae *AppError
	return errors.As(err, &ae) || IsRPC(err)
}
