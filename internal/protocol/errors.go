package protocol

import "errors"

var (
	ErrUnknownCategory = errors.New("protocol: unknown category")
	ErrUnknownRow      = errors.New("protocol: unknown row")
	ErrUnknownCommand  = errors.New("protocol: unknown command")
)
