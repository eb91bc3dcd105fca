package redis

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// fakeServer speaks just enough RESP for the provider: PING, GET (always a
// miss), SET and DEL. Anything else gets an error reply.
type fakeServer struct {
	ln net.Listener
	wg sync.WaitGroup

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	down    bool // hang up on every connection and command
	dropGet bool // hang up when a GET arrives
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeServer{ln: ln, conns: make(map[net.Conn]struct{})}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.close)
	return s
}

func (s *fakeServer) addr() string { return s.ln.Addr().String() }

func (s *fakeServer) setDown(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = v
	if v {
		for c := range s.conns {
			_ = c.Close()
		}
	}
}

func (s *fakeServer) setDropGet(v bool) {
	s.mu.Lock()
	s.dropGet = v
	s.mu.Unlock()
}

func (s *fakeServer) close() {
	_ = s.ln.Close()
	s.setDown(true)
	s.wg.Wait()
}

func (s *fakeServer) serve() {
	defer s.wg.Done()
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.down {
			s.mu.Unlock()
			_ = c.Close()
			continue
		}
		s.conns[c] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handle(c)
	}
}

func (s *fakeServer) handle(c net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		_ = c.Close()
	}()

	r := bufio.NewReader(c)
	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		cmd := strings.ToUpper(args[0])

		s.mu.Lock()
		hangUp := s.down || (s.dropGet && cmd == "GET")
		s.mu.Unlock()
		if hangUp {
			return
		}

		reply := "-ERR unknown command '" + args[0] + "'\r\n"
		switch cmd {
		case "PING":
			reply = "+PONG\r\n"
		case "GET":
			reply = "$-1\r\n"
		case "SET":
			reply = "+OK\r\n"
		case "DEL":
			reply = ":0\r\n"
		}
		if _, err := io.WriteString(c, reply); err != nil {
			return
		}
	}
}

// readCommand reads one RESP array of bulk strings.
func readCommand(r *bufio.Reader) ([]string, error) {
	n, err := readHeader(r, '*')
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("empty command")
	}
	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		l, err := readHeader(r, '$')
		if err != nil {
			return nil, err
		}
		buf := make([]byte, l+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:l]))
	}
	return args, nil
}

func readHeader(r *bufio.Reader, prefix byte) (int, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return 0, err
	}
	line = strings.TrimRight(line, "\r\n")
	if len(line) < 2 || line[0] != prefix {
		return 0, fmt.Errorf("unexpected line %q", line)
	}
	return strconv.Atoi(line[1:])
}

// fakeProvider connects to s with a slow health check, so only the
// reconnect backoff can bring it back quickly. Client retries are off so a
// dropped command fails on the first attempt.
func fakeProvider(t *testing.T, s *fakeServer, ev *recordedEvents) *Redis {
	t.Helper()
	client := goredis.NewClient(&goredis.Options{
		Addr:        s.addr(),
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	p, err := New(Config{
		Client:         client,
		CloseClient:    true,
		Events:         ev,
		HealthInterval: 10 * time.Second,
		PingTimeout:    200 * time.Millisecond,
		RetryInitial:   10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Ready(ctx); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	return p
}
