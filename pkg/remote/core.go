// Package remote is a small gob over TCP RPC runtime. Servers announce the
// services they host to a dispatcher, clients ask the dispatcher where a
// service lives and talk to that server directly through generated proxies.
package remote

import (
	"encoding/gob"
	"net"
	"sync"
)

// Instance addresses one object of a service type on the remote side.
type Instance struct {
	Type   string
	ID     string
	client *Client
}

type request struct {
	ID       string
	Instance Instance
	Method   string
	Params   []byte
}

type response struct {
	ID      string
	Err     error
	Results []byte
}

// connection serializes writes of concurrent senders on one stream.
type connection struct {
	conn    net.Conn
	lock    sync.Mutex
	encoder *gob.Encoder
}

func newConnection(conn net.Conn) *connection {
	return &connection{
		conn:    conn,
		encoder: gob.NewEncoder(conn),
	}
}

func (c *connection) send(v any) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.encoder.Encode(v)
}
