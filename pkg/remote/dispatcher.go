package remote

import (
	"encoding/gob"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog"
)

// Dispatcher maps service types to the endpoints of the servers hosting them.
type Dispatcher struct {
	name      string
	services  SyncMap[string, string]
	listeners []*net.TCPListener
	wgs       []*sync.WaitGroup
	conns     SyncMap[net.Conn, string]
	logger    zerolog.Logger
}

func NewDispatcher(name string) Dispatcher {
	return Dispatcher{
		name:     name,
		services: NewSyncMap[string, string](),
		conns:    NewSyncMap[net.Conn, string](),
		logger:   defaultLogger("dispatcher", name),
	}
}

func (d *Dispatcher) logf(format string, v ...any) {
	d.logger.Info().Msgf(format, v...)
}

func (d *Dispatcher) log(v ...any) {
	d.logger.Info().Msg(fmt.Sprint(v...))
}

func (d *Dispatcher) logError(err error) {
	d.logger.Error().Err(err).Send()
}

func (d *Dispatcher) SetLogger(logger zerolog.Logger) {
	d.logger = componentLogger(logger, "dispatcher", d.name)
}

func (d *Dispatcher) Name() string {
	return d.name
}

// Lookup returns the endpoint announced for service.
func (d *Dispatcher) Lookup(service string) (endPoint string, ok bool) {
	return d.services.Get(service)
}

func (d *Dispatcher) Stop() {
	d.log("stopping...")
	for _, listener := range d.listeners {
		err := listener.Close()
		if err != nil {
			d.logError(err)
		}
	}
	d.conns.Range(func(conn net.Conn, remote string) bool {
		err := conn.Close()
		if err != nil {
			d.logError(err)
		}
		return true
	})
}

func (d *Dispatcher) Wait() {
	for _, wg := range d.wgs {
		wg.Wait()
	}
	d.log("graceful shutdown complete.")
}

func (d *Dispatcher) Shutdown() {
	d.Stop()
	d.Wait()
}

// ListenAnnounces accepts server announces on endPoint and returns the bound
// address.
func (d *Dispatcher) ListenAnnounces(endPoint string) (net.Addr, error) {
	return d.accept(endPoint, "service announces", "server", d.addServices)
}

// Serve answers client endpoint lookups on endPoint and returns the bound
// address.
func (d *Dispatcher) Serve(endPoint string) (net.Addr, error) {
	return d.accept(endPoint, "client connections", "client", d.respond)
}

func (d *Dispatcher) accept(endPoint, what, peer string, handle func(net.Conn) error) (addr net.Addr, err error) {
	local, err := net.ResolveTCPAddr("tcp", endPoint)
	if err != nil {
		return
	}
	listener, err := net.ListenTCP("tcp", local)
	if err != nil {
		return
	}
	addr = listener.Addr()
	d.logf("started listening %v on %v", what, addr)
	d.listeners = append(d.listeners, listener)
	var wg sync.WaitGroup
	d.wgs = append(d.wgs, &wg)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer d.logf("stopped listening %v on %v", what, addr)
		for {
			conn, err := listener.AcceptTCP()
			if err != nil {
				d.log(err)
				return
			}
			remote := conn.RemoteAddr().String()
			d.log(peer, " connected from address ", remote)
			d.conns.Put(conn, remote)
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer d.conns.Delete(conn)
				err := handle(conn)
				if err != nil && err != io.EOF {
					d.logError(err)
				} else {
					d.log(peer, " ", remote, " disconnected")
				}
			}()
		}
	}()
	return
}

func (d *Dispatcher) addServices(conn net.Conn) (err error) {
	defer func() {
		closeErr := conn.Close()
		if closeErr != nil {
			if err == nil {
				err = closeErr
			} else {
				d.logError(closeErr)
			}
		}
	}()
	decoder := gob.NewDecoder(conn)
	var endPoint string
	err = decoder.Decode(&endPoint)
	if err != nil {
		return
	}
	for {
		var service string
		err = decoder.Decode(&service)
		if err != nil {
			return
		}
		d.services.Put(service, endPoint)
		d.logf("server %v announced service '%v'", endPoint, service)
	}
}

func (d *Dispatcher) respond(conn net.Conn) (err error) {
	defer func() {
		closeErr := conn.Close()
		if closeErr != nil {
			if err == nil {
				err = closeErr
			} else {
				d.logError(closeErr)
			}
		}
	}()
	remote := conn.RemoteAddr().String()
	decoder := gob.NewDecoder(conn)
	encoder := gob.NewEncoder(conn)
	for {
		var service string
		err = decoder.Decode(&service)
		if err != nil {
			return
		}
		d.logf("client %v requested service '%v'", remote, service)
		endPoint, _ := d.services.Get(service)
		err = encoder.Encode(endPoint)
		if err != nil {
			return
		}
		d.logf("responded to client %v: service '%v' has address %v", remote, service, endPoint)
	}
}
