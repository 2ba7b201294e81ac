// Package intercept edits protobuf packets in flight. An Interceptor sees
// every request and response with its URI and command id and may return a
// rewritten packet.
package intercept

import (
	"github.com/danmuck/protoedit/internal/config"
)

type Direction string

const (
	Request  Direction = config.DirectionRequest
	Response Direction = config.DirectionResponse
)

// Interceptor inspects one packet. The bool result reports whether the
// returned bytes replace the packet; when false the packet passes through
// unchanged and the returned bytes are ignored.
type Interceptor interface {
	Name() string
	OnRequest(uri string, cmdID int, b []byte) ([]byte, bool)
	OnResponse(uri string, cmdID int, b []byte) ([]byte, bool)
}

// Chain runs interceptors in order, feeding each replacement to the next.
type Chain []Interceptor

func (c Chain) Name() string { return "chain" }

func (c Chain) OnRequest(uri string, cmdID int, b []byte) ([]byte, bool) {
	return c.run(Request, uri, cmdID, b)
}

func (c Chain) OnResponse(uri string, cmdID int, b []byte) ([]byte, bool) {
	return c.run(Response, uri, cmdID, b)
}

func (c Chain) run(dir Direction, uri string, cmdID int, b []byte) ([]byte, bool) {
	cur := b
	changed := false
	for _, i := range c {
		if i == nil {
			continue
		}
		var out []byte
		var ok bool
		if dir == Request {
			out, ok = i.OnRequest(uri, cmdID, cur)
		} else {
			out, ok = i.OnResponse(uri, cmdID, cur)
		}
		if ok {
			cur = out
			changed = true
		}
	}
	return cur, changed
}

// Handle dispatches to OnRequest or OnResponse by direction.
func Handle(i Interceptor, dir Direction, uri string, cmdID int, b []byte) ([]byte, bool) {
	if dir == Request {
		return i.OnRequest(uri, cmdID, b)
	}
	return i.OnResponse(uri, cmdID, b)
}
