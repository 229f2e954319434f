package redisserver

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flashkv/flashkv/internal/storage"
	"github.com/flashkv/flashkv/internal/telemetry/metric"
)

func startTestServer(t *testing.T, cfg Config) (addr string, srv *Server) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if cfg.ReadTimeout == 0 {
		cfg = DefaultConfig()
	}
	srv = New(cfg, storage.New(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		_ = srv.Serve(ctx, ln)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		shCtx, shCancel := context.WithTimeout(context.Background(), time.Second)
		defer shCancel()
		_ = srv.Shutdown(shCtx)
		<-done
	})

	return ln.Addr().String(), srv
}

func startTestServerWithMetrics(t *testing.T, cfg Config, reg *metric.Registry) (addr string, srv *Server) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if cfg.ReadTimeout == 0 {
		cfg = DefaultConfig()
	}
	srv = New(cfg, storage.New(), nil)
	srv.SetMetrics(reg)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		_ = srv.Serve(ctx, ln)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		shCtx, shCancel := context.WithTimeout(context.Background(), time.Second)
		defer shCancel()
		_ = srv.Shutdown(shCtx)
		<-done
	})

	return ln.Addr().String(), srv
}

func dial(t *testing.T, addr string) (net.Conn, *bufio.Reader) {
	t.Helper()
	c, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, bufio.NewReader(c)
}

func TestServer_PingPong(t *testing.T) {
	addr, _ := startTestServer(t, Config{Address: "ignored", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second})
	c, r := dial(t, addr)

	if _, err := c.Write([]byte("*1\r\n$4\r\nPING\r\n")); err != nil {
		t.Fatal(err)
	}
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimRight(line, "\r\n") != "+PONG" {
		t.Fatalf("got %q, want +PONG", line)
	}
}

func TestServer_InlineCommand(t *testing.T) {
	addr, _ := startTestServer(t, Config{Address: "ignored", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second})
	c, r := dial(t, addr)

	if _, err := c.Write([]byte("PING\r\n")); err != nil {
		t.Fatal(err)
	}
	line, _ := r.ReadString('\n')
	if strings.TrimRight(line, "\r\n") != "+PONG" {
		t.Fatalf("got %q, want +PONG", line)
	}
}

func TestServer_EmptyCommandArray(t *testing.T) {
	addr, _ := startTestServer(t, Config{Address: "ignored", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second})
	c, r := dial(t, addr)

	if _, err := c.Write([]byte("*0\r\n")); err != nil {
		t.Fatal(err)
	}
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimRight(line, "\r\n") != "-ERR empty command" {
		t.Fatalf("got %q, want -ERR empty command", line)
	}
}

func TestServer_Pipelining(t *testing.T) {
	addr, _ := startTestServer(t, Config{Address: "ignored", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second})
	c, r := dial(t, addr)

	req := "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"
	if _, err := c.Write([]byte(req)); err != nil {
		t.Fatal(err)
	}

	line1, _ := r.ReadString('\n')
	if strings.TrimRight(line1, "\r\n") != "+OK" {
		t.Fatalf("first reply = %q, want +OK", line1)
	}

	line2, _ := r.ReadString('\n')
	if strings.TrimRight(line2, "\r\n") != "$1" {
		t.Fatalf("second reply header = %q, want $1", line2)
	}
	line3, _ := r.ReadString('\n')
	if strings.TrimRight(line3, "\r\n") != "v" {
		t.Fatalf("second reply body = %q, want v", line3)
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	addr, _ := startTestServer(t, Config{Address: "ignored", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second})
	c, r := dial(t, addr)

	c.Write([]byte("*1\r\n$4\r\nNOPE\r\n"))
	line, _ := r.ReadString('\n')
	if !strings.HasPrefix(line, "-ERR unknown command") {
		t.Fatalf("got %q", line)
	}
}

func TestServer_WrongArity(t *testing.T) {
	addr, _ := startTestServer(t, Config{Address: "ignored", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second})
	c, r := dial(t, addr)

	c.Write([]byte("*1\r\n$3\r\nGET\r\n"))
	line, _ := r.ReadString('\n')
	if !strings.HasPrefix(line, "-ERR wrong number of arguments") {
		t.Fatalf("got %q", line)
	}
}

func TestServer_Quit(t *testing.T) {
	addr, _ := startTestServer(t, Config{Address: "ignored", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second})
	c, r := dial(t, addr)

	c.Write([]byte("*1\r\n$4\r\nQUIT\r\n"))
	line, _ := r.ReadString('\n')
	if strings.TrimRight(line, "\r\n") != "+OK" {
		t.Fatalf("got %q, want +OK", line)
	}

	buf := make([]byte, 1)
	c.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := r.Read(buf); err == nil {
		t.Fatal("expected connection to be closed after QUIT")
	}
}

func TestServer_BufferFullClosesConnection(t *testing.T) {
	addr, _ := startTestServer(t, Config{Address: "ignored", ReadTimeout: 2 * time.Second, WriteTimeout: time.Second, IdleTimeout: 2 * time.Second})
	c, r := dial(t, addr)

	// An unterminated inline line longer than the read buffer cap never
	// yields a complete frame, so the connection must be closed rather
	// than buffer forever.
	garbage := strings.Repeat("a", maxReadBuffer+1024)
	go c.Write([]byte(garbage))

	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := r.ReadString('\n')
	if err == nil && !strings.Contains(line, "buffer") {
		t.Fatalf("got reply %q, want a buffer-full error or connection close", line)
	}
}

func TestServer_StatsTrackConnectionsAndCommands(t *testing.T) {
	addr, srv := startTestServer(t, Config{Address: "ignored", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second})
	c, r := dial(t, addr)

	c.Write([]byte("*1\r\n$4\r\nPING\r\n"))
	r.ReadString('\n')

	time.Sleep(50 * time.Millisecond)
	stats := srv.Stats()
	if stats.ConnectionsAccepted != 1 {
		t.Errorf("ConnectionsAccepted = %d, want 1", stats.ConnectionsAccepted)
	}
	if stats.CommandsProcessed != 1 {
		t.Errorf("CommandsProcessed = %d, want 1", stats.CommandsProcessed)
	}
}

func TestServer_MetricsRegistryReceivesConnectionAndCommandActivity(t *testing.T) {
	reg := metric.NewRegistry()
	addr, _ := startTestServerWithMetrics(t, Config{Address: "ignored", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second}, reg)
	c, r := dial(t, addr)

	c.Write([]byte("*1\r\n$4\r\nPING\r\n"))
	r.ReadString('\n')

	time.Sleep(50 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, req)
	body := rec.Body.String()

	if !strings.Contains(body, "flashkv_connections_accepted_total 1") {
		t.Errorf("expected flashkv_connections_accepted_total 1 in scrape, got:\n%s", body)
	}
	if !strings.Contains(body, "flashkv_commands_total{command=\"PING\",outcome=\"ok\"} 1") {
		t.Errorf("expected flashkv_commands_total for PING in scrape, got:\n%s", body)
	}
}
