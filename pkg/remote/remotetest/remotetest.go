// Package remotetest runs a dispatcher, a server and a client on loopback
// ports for tests.
package remotetest

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/scraswell/calculator/pkg/remote"
)

type Cluster struct {
	Dispatcher *remote.Dispatcher
	Server     *remote.Server
	Client     *remote.Client

	AnnounceEndPoint string
	LookupEndPoint   string
	ServerEndPoint   string
}

// Start brings the cluster up and waits until the dispatcher knows every
// registered service. It is torn down in tb's cleanup.
func Start(tb testing.TB) *Cluster {
	tb.Helper()
	logger := zerolog.Nop()

	d := remote.NewDispatcher("test")
	d.SetLogger(logger)
	announceAddr, err := d.ListenAnnounces("127.0.0.1:0")
	if err != nil {
		tb.Fatal(err)
	}
	lookupAddr, err := d.Serve("127.0.0.1:0")
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(d.Shutdown)

	s := remote.NewServer("test")
	s.SetLogger(logger)
	serverAddr, err := s.Serve("127.0.0.1:0")
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(s.Shutdown)
	err = s.AnnounceServices(serverAddr.String(), announceAddr.String())
	if err != nil {
		tb.Fatal(err)
	}
	for _, service := range remote.Services() {
		WaitFor(tb, func() bool {
			_, ok := d.Lookup(service)
			return ok
		})
	}

	c, err := remote.NewClient("test", "127.0.0.1:0", lookupAddr.String())
	if err != nil {
		tb.Fatal(err)
	}
	c.SetLogger(logger)
	tb.Cleanup(c.Close)

	return &Cluster{
		Dispatcher:       &d,
		Server:           &s,
		Client:           &c,
		AnnounceEndPoint: announceAddr.String(),
		LookupEndPoint:   lookupAddr.String(),
		ServerEndPoint:   serverAddr.String(),
	}
}

// WaitFor polls cond until it holds, failing tb after five seconds.
func WaitFor(tb testing.TB, cond func() bool) {
	tb.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			tb.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
