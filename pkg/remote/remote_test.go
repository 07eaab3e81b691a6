package remote

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.llib.dev/testcase/assert"
)

type Adder interface {
	Add(x, y int32) (int32, error)
	Explode() error
}

type adderProxy Instance

func (p adderProxy) Add(x, y int32) (int32, error) {
	params := struct {
		X, Y int32
	}{
		X: x,
		Y: y,
	}
	var results struct {
		R int32
	}
	err := Instance(p).Call("Add", params, &results)
	return results.R, err
}

func (p adderProxy) Explode() error {
	params := struct {
		N int
	}{}
	var results struct {
		N int
	}
	return Instance(p).Call("Explode", params, &results)
}

type Unannounced interface {
	Ping() error
}

type unannouncedProxy Instance

func (p unannouncedProxy) Ping() error {
	var results struct {
		N int
	}
	return Instance(p).Call("Ping", struct{ N int }{}, &results)
}

type Unregistered interface{}

func adderHandler(id string, method string, decode func(params any) error, encode func(results any) error) error {
	if id != "" && id != "1" {
		return ErrInstanceNotFound
	}
	switch method {
	case "Add":
		var params struct {
			X, Y int32
		}
		err := decode(&params)
		if err != nil {
			return err
		}
		return encode(struct{ R int32 }{R: params.X + params.Y})
	case "Explode":
		panic("boom")
	default:
		return ErrMethodNotFound
	}
}

func init() {
	RegisterTypeHandler("Adder", adderHandler)
	RegisterProxy[Adder](func(i Instance) any {
		return adderProxy(i)
	})
	RegisterProxy[Unannounced](func(i Instance) any {
		return unannouncedProxy(i)
	})
}

type cluster struct {
	dispatcher *Dispatcher
	server     *Server
	client     *Client
}

func startCluster(t *testing.T) cluster {
	t.Helper()
	d := NewDispatcher("test")
	d.SetLogger(zerolog.Nop())
	announceAddr, err := d.ListenAnnounces("127.0.0.1:0")
	assert.NoError(t, err)
	lookupAddr, err := d.Serve("127.0.0.1:0")
	assert.NoError(t, err)

	s := NewServer("test")
	s.SetLogger(zerolog.Nop())
	serverAddr, err := s.Serve("127.0.0.1:0")
	assert.NoError(t, err)
	assert.NoError(t, s.AnnounceServices(serverAddr.String(), announceAddr.String()))
	waitFor(t, func() bool {
		_, ok := d.Lookup("Adder")
		return ok
	})

	c, err := NewClient("test", "127.0.0.1:0", lookupAddr.String())
	assert.NoError(t, err)
	c.SetLogger(zerolog.Nop())

	t.Cleanup(func() {
		c.Close()
		s.Shutdown()
		d.Shutdown()
	})
	return cluster{dispatcher: &d, server: &s, client: &c}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCallRoundTrip(t *testing.T) {
	c := startCluster(t)
	adder, err := Get[Adder]("1", c.client)
	assert.NoError(t, err)

	sum, err := adder.Add(3, 4)
	assert.NoError(t, err)
	assert.Equal(t, int32(7), sum)

	sum, err = adder.Add(-5, 5)
	assert.NoError(t, err)
	assert.Equal(t, int32(0), sum)
}

func TestConcurrentCalls(t *testing.T) {
	c := startCluster(t)
	adder, err := Get[Adder]("", c.client)
	assert.NoError(t, err)

	const calls = 64
	sums := make([]int32, calls)
	errs := make([]error, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sums[i], errs[i] = adder.Add(int32(i), int32(i))
		}(i)
	}
	wg.Wait()
	for i := 0; i < calls; i++ {
		assert.NoError(t, errs[i])
		assert.Equal(t, int32(2*i), sums[i])
	}
	assert.Equal(t, 0, c.client.responseRoutes.Len())
}

func TestRemoteErrors(t *testing.T) {
	c := startCluster(t)

	t.Run("unknown instance", func(t *testing.T) {
		adder, err := Get[Adder]("42", c.client)
		assert.NoError(t, err)
		_, err = adder.Add(1, 2)
		assert.ErrorIs(t, ErrInstanceNotFound, err)
	})

	t.Run("unknown method", func(t *testing.T) {
		adder, err := Get[Adder]("1", c.client)
		assert.NoError(t, err)
		var results struct{ R int32 }
		err = Instance(adder.(adderProxy)).Call("Multiply", struct{ X, Y int32 }{X: 2, Y: 3}, &results)
		assert.ErrorIs(t, ErrMethodNotFound, err)
	})

	t.Run("handler panic", func(t *testing.T) {
		adder, err := Get[Adder]("1", c.client)
		assert.NoError(t, err)
		assert.Equal(t, error(NewError("boom")), adder.Explode())
	})

	t.Run("service not announced", func(t *testing.T) {
		u, err := Get[Unannounced]("1", c.client)
		assert.NoError(t, err)
		assert.ErrorIs(t, ErrServiceNotFound, u.Ping())
	})

	t.Run("proxy not registered", func(t *testing.T) {
		_, err := Get[Unregistered]("1", c.client)
		assert.ErrorIs(t, ErrProxyTypeNotFound, err)
	})
}

func TestCallAfterClose(t *testing.T) {
	c := startCluster(t)
	adder, err := Get[Adder]("1", c.client)
	assert.NoError(t, err)
	_, err = adder.Add(1, 1)
	assert.NoError(t, err)

	c.client.Close()
	_, err = adder.Add(1, 1)
	assert.ErrorIs(t, ErrClientClosed, err)
}

func TestProcessUnregisteredType(t *testing.T) {
	res := process(request{
		ID:       "id",
		Instance: Instance{Type: "Nope"},
		Method:   "Add",
	})
	assert.Equal(t, "id", res.ID)
	assert.Equal(t, error(ErrUnregisteredType), res.Err)
}

func TestDispatcherLookup(t *testing.T) {
	c := startCluster(t)
	endPoint, ok := c.dispatcher.Lookup("Adder")
	assert.True(t, ok)
	assert.True(t, endPoint != "")
	_, ok = c.dispatcher.Lookup("Nope")
	assert.True(t, !ok)
}

func TestServicesSorted(t *testing.T) {
	RegisterTypeHandler("Aardvark", adderHandler)
	defer typeHandlers.Delete("Aardvark")
	services := Services()
	assert.True(t, len(services) >= 2)
	assert.Equal(t, "Aardvark", services[0])
	assert.Equal(t, "Adder", services[1])
}

func TestSyncMap(t *testing.T) {
	sm := NewSyncMap[string, int]()
	sm.Put("a", 1)
	sm.Put("b", 2)
	v, ok := sm.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	sm.Delete("a")
	_, ok = sm.Get("a")
	assert.True(t, !ok)
	assert.Equal(t, 1, sm.Len())

	var seen []string
	sm.Range(func(key string, _ int) bool {
		seen = append(seen, key)
		return true
	})
	assert.Equal(t, []string{"b"}, seen)
}
