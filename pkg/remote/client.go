package remote

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"net"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var proxies = NewSyncMap[reflect.Type, func(i Instance) any]()

// RegisterProxy makes create the proxy constructor for interface T.
func RegisterProxy[T any](create func(i Instance) any) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	proxies.Put(t, create)
}

type pending struct {
	service string
	route   chan response
}

type Client struct {
	name              string
	requestRoutes     SyncMap[string, *connection]
	responseRoutes    SyncMap[string, pending]
	address           *net.TCPAddr
	dispatcherAddress *net.TCPAddr
	dial              *sync.Mutex
	closed            *atomic.Bool
	logger            zerolog.Logger
}

func NewClient(name, endPoint, dispatcherEndPoint string) (client Client, err error) {
	address, err := net.ResolveTCPAddr("tcp", endPoint)
	if err != nil {
		return
	}
	dispatcherAddress, err := net.ResolveTCPAddr("tcp", dispatcherEndPoint)
	if err != nil {
		return
	}
	client = Client{
		name:              name,
		requestRoutes:     NewSyncMap[string, *connection](),
		responseRoutes:    NewSyncMap[string, pending](),
		address:           address,
		dispatcherAddress: dispatcherAddress,
		dial:              new(sync.Mutex),
		closed:            new(atomic.Bool),
		logger:            defaultLogger("client", name),
	}
	return
}

func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = componentLogger(logger, "client", c.name)
}

func (c *Client) logf(format string, v ...any) {
	c.logger.Info().Msgf(format, v...)
}

func (c *Client) log(v ...any) {
	c.logger.Info().Msg(fmt.Sprint(v...))
}

func (c *Client) logError(err error) {
	c.logger.Error().Err(err).Send()
}

// Close drops every server connection. Calls in flight fail with
// ErrConnectionLost, later calls with ErrClientClosed.
func (c *Client) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.log("closing...")
	c.requestRoutes.Range(func(service string, conn *connection) bool {
		err := conn.conn.Close()
		if err != nil {
			c.logError(err)
		}
		return true
	})
}

// Get returns the proxy registered for interface T, bound to instance id.
func Get[T any](id string, client *Client) (proxy T, err error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	create, ok := proxies.Get(t)
	if !ok {
		err = ErrProxyTypeNotFound
		return
	}
	i := Instance{
		ID:     id,
		Type:   t.Name(),
		client: client,
	}
	return create(i).(T), nil
}

// Call invokes method on the instance, gob-encoding params and decoding the
// reply into results.
func (i Instance) Call(method string, params any, results any) (err error) {
	if i.client == nil || i.client.closed.Load() {
		return ErrClientClosed
	}
	var buffer bytes.Buffer
	err = gob.NewEncoder(&buffer).Encode(params)
	if err != nil {
		return
	}
	req := request{
		ID:       uuid.NewString(),
		Instance: i,
		Method:   method,
		Params:   buffer.Bytes(),
	}
	res := i.send(req)
	if res.Err != nil {
		return res.Err
	}
	return gob.NewDecoder(bytes.NewBuffer(res.Results)).Decode(results)
}

func (i Instance) send(req request) (res response) {
	conn, err := i.route()
	if err != nil {
		res.Err = err
		return
	}
	route := make(chan response, 1)
	i.client.responseRoutes.Put(req.ID, pending{service: i.Type, route: route})
	defer i.client.responseRoutes.Delete(req.ID)
	res.Err = conn.send(req)
	if res.Err != nil {
		return
	}
	i.client.log("sent request with ID ", req.ID)
	res = <-route
	return
}

func (i Instance) route() (*connection, error) {
	conn, ok := i.client.requestRoutes.Get(i.Type)
	if ok {
		return conn, nil
	}
	i.client.dial.Lock()
	defer i.client.dial.Unlock()
	conn, ok = i.client.requestRoutes.Get(i.Type)
	if ok {
		return conn, nil
	}
	return i.connect()
}

func (i Instance) connect() (out *connection, err error) {
	endPoint, err := i.getEndPoint()
	if err != nil {
		return
	}
	if endPoint == "" {
		return nil, ErrServiceNotFound
	}
	i.client.logf("received endpoint %v for service '%v'", endPoint, i.Type)
	serviceAddress, err := net.ResolveTCPAddr("tcp", endPoint)
	if err != nil {
		return
	}
	conn, err := net.DialTCP("tcp", i.client.address, serviceAddress)
	if err != nil {
		return
	}
	remote := conn.RemoteAddr().String()
	i.client.log("connected to server ", remote)
	out = newConnection(conn)
	i.client.requestRoutes.Put(i.Type, out)
	go func() {
		defer func() {
			i.client.requestRoutes.Delete(i.Type)
			err := conn.Close()
			if err != nil && !i.client.closed.Load() {
				i.client.logError(err)
			}
			i.client.failPending(i.Type)
		}()
		decoder := gob.NewDecoder(conn)
		for {
			var res response
			err := decoder.Decode(&res)
			if err != nil {
				if !i.client.closed.Load() {
					i.client.log(err)
				}
				return
			}
			i.client.log("received response with ID ", res.ID, " from server ", remote)
			p, ok := i.client.responseRoutes.Get(res.ID)
			if !ok {
				i.client.logError(ErrRequestNotFound)
				continue
			}
			deliver(p.route, res)
		}
	}()
	return
}

// failPending wakes every caller still waiting on service after its
// connection went away.
func (c *Client) failPending(service string) {
	c.responseRoutes.Range(func(id string, p pending) bool {
		if p.service == service {
			deliver(p.route, response{ID: id, Err: ErrConnectionLost})
		}
		return true
	})
}

func deliver(route chan response, res response) {
	select {
	case route <- res:
	default:
	}
}

func (i Instance) getEndPoint() (endPoint string, err error) {
	conn, err := net.DialTCP("tcp", i.client.address, i.client.dispatcherAddress)
	if err != nil {
		return
	}
	defer func() {
		closeErr := conn.Close()
		if err == nil {
			err = closeErr
		} else if closeErr != nil {
			i.client.logError(closeErr)
		}
	}()
	i.client.log("connected to dispatcher ", i.client.dispatcherAddress.String())
	encoder := gob.NewEncoder(conn)
	decoder := gob.NewDecoder(conn)
	err = encoder.Encode(i.Type)
	i.client.logf("requested endpoint for service '%v'", i.Type)
	if err != nil {
		return
	}
	err = decoder.Decode(&endPoint)
	return
}
