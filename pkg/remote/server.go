package remote

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog"
)

// TypeHandler dispatches one call to the instance id of a service type.
type TypeHandler func(
	id string,
	method string,
	decode func(params any) error,
	encode func(results any) error) error

var typeHandlers = NewSyncMap[string, TypeHandler]()

func RegisterTypeHandler(name string, handler TypeHandler) {
	typeHandlers.Put(name, handler)
}

// Services lists the registered service types in name order.
func Services() []string {
	return sortedKeys(typeHandlers)
}

type Server struct {
	name      string
	listeners []*net.TCPListener
	wgs       []*sync.WaitGroup
	conns     SyncMap[net.Conn, string]
	logger    zerolog.Logger
}

func NewServer(name string) Server {
	return Server{
		name:   name,
		conns:  NewSyncMap[net.Conn, string](),
		logger: defaultLogger("server", name),
	}
}

func (s *Server) SetLogger(logger zerolog.Logger) {
	s.logger = componentLogger(logger, "server", s.name)
}

func (s *Server) Name() string {
	return s.name
}

func (s *Server) Stop() {
	s.log("stopping...")
	for _, listener := range s.listeners {
		err := listener.Close()
		if err != nil {
			s.logError(err)
		}
	}
	s.conns.Range(func(conn net.Conn, remote string) bool {
		err := conn.Close()
		if err != nil {
			s.logError(err)
		}
		return true
	})
}

func (s *Server) Wait() {
	for _, wg := range s.wgs {
		wg.Wait()
	}
	s.log("graceful shutdown complete.")
}

func (s *Server) Shutdown() {
	s.Stop()
	s.Wait()
}

func (s *Server) logf(format string, v ...any) {
	s.logger.Info().Msgf(format, v...)
}

func (s *Server) log(v ...any) {
	s.logger.Info().Msg(fmt.Sprint(v...))
}

func (s *Server) logError(err error) {
	s.logger.Error().Err(err).Send()
}

// Serve accepts client connections on endPoint and returns the bound
// address, which differs from endPoint when it asks for port 0.
func (s *Server) Serve(endPoint string) (addr net.Addr, err error) {
	local, err := net.ResolveTCPAddr("tcp", endPoint)
	if err != nil {
		return
	}
	listener, err := net.ListenTCP("tcp", local)
	if err != nil {
		return
	}
	addr = listener.Addr()
	s.log("started listening connections on ", addr)
	s.listeners = append(s.listeners, listener)
	var wg sync.WaitGroup
	s.wgs = append(s.wgs, &wg)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer s.log("stopped listening connections on ", addr)
		for {
			conn, err := listener.AcceptTCP()
			if err != nil {
				s.log(err)
				return
			}
			remote := conn.RemoteAddr().String()
			s.log("client connected from address ", remote)
			s.conns.Put(conn, remote)
			wg.Add(1)
			go func(conn net.Conn) {
				defer wg.Done()
				defer s.conns.Delete(conn)
				err := s.listen(conn, &wg)
				if err != nil && err != io.EOF {
					s.logError(err)
				} else {
					s.log("client ", remote, " disconnected")
				}
			}(conn)
		}
	}()
	return
}

// AnnounceServices tells the dispatcher at announceEndPoint that every
// registered service type is reachable at serverEndPoint.
func (s *Server) AnnounceServices(serverEndPoint, announceEndPoint string) (err error) {
	remote, err := net.ResolveTCPAddr("tcp", announceEndPoint)
	if err != nil {
		return
	}
	conn, err := net.DialTCP("tcp", nil, remote)
	if err != nil {
		return
	}
	defer func() {
		closeErr := conn.Close()
		if closeErr != nil {
			if err == nil {
				err = closeErr
			} else {
				s.logError(closeErr)
			}
		}
	}()
	s.log("connected to dispatcher ", announceEndPoint)
	encoder := gob.NewEncoder(conn)
	err = encoder.Encode(serverEndPoint)
	if err != nil {
		return
	}
	for _, service := range Services() {
		err = encoder.Encode(service)
		if err != nil {
			return
		}
		s.logf("successfully announced service '%v'", service)
	}
	return
}

func (s *Server) listen(conn net.Conn, wg *sync.WaitGroup) (err error) {
	defer func() {
		closeErr := conn.Close()
		if closeErr != nil {
			if err == nil {
				err = closeErr
			} else {
				s.logError(closeErr)
			}
		}
	}()
	remote := conn.RemoteAddr().String()
	decoder := gob.NewDecoder(conn)
	out := newConnection(conn)
	for {
		var req request
		err = decoder.Decode(&req)
		if err != nil {
			return
		}
		s.log("received request with ID ", req.ID, " from client ", remote)
		wg.Add(1)
		go func(req request) {
			defer wg.Done()
			res := process(req)
			if res.Err != nil {
				s.logError(res.Err)
				res.Err = NewError(res.Err.Error())
			}
			sendErr := out.send(res)
			if sendErr != nil {
				s.logError(sendErr)
			} else {
				s.log("successfully sent response with ID ", res.ID, " to client ", remote)
			}
		}(req)
	}
}

func process(req request) (res response) {
	res.ID = req.ID
	handler, ok := typeHandlers.Get(req.Instance.Type)
	if !ok {
		res.Err = ErrUnregisteredType
		return
	}
	defer func() {
		if r := recover(); r != nil {
			res.Err = NewError(fmt.Sprint(r))
			res.Results = nil
		}
	}()
	decoder := gob.NewDecoder(bytes.NewBuffer(req.Params))
	decode := func(params any) error {
		return decoder.Decode(params)
	}
	var buffer bytes.Buffer
	encoder := gob.NewEncoder(&buffer)
	encode := func(results any) error {
		return encoder.Encode(results)
	}
	res.Err = handler(req.Instance.ID, req.Method, decode, encode)
	res.Results = buffer.Bytes()
	return
}
