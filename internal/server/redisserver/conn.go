package redisserver

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flashkv/flashkv/internal/bytealloc"
	"github.com/flashkv/flashkv/internal/ratelimit"
	"github.com/flashkv/flashkv/internal/resp"
	"github.com/flashkv/flashkv/internal/storage"
	"github.com/flashkv/flashkv/internal/telemetry/logger"
	"github.com/flashkv/flashkv/internal/telemetry/metric"
)

// maxReadBuffer is the hard cap on a connection's read buffer occupancy.
// A connection that accumulates this much data without completing a
// command is closed with ErrBufferFull.
const maxReadBuffer = 64 * 1024

// ErrBufferFull is returned internally when a connection's read buffer
// reaches maxReadBuffer without yielding a complete frame.
var ErrBufferFull = errors.New("redisserver: read buffer full")

// Config holds the Redis server configuration.
type Config struct {
	// Address is the TCP listen address (default: 127.0.0.1:6379).
	Address string
	// ReadTimeout is the timeout for reading a command (default: 30s).
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing a response (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is the timeout for idle connections (default: 5m).
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per
	// remote address (default: 0, disabled).
	RateLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Address:      "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		RateLimit:    0,
	}
}

// Stats is a point-in-time snapshot of connection-level counters.
type Stats struct {
	ConnectionsAccepted int64
	ConnectionsActive   int64
	CommandsProcessed   int64
	BytesRead           int64
	BytesWritten        int64
}

// serverCounters holds the server's advisory statistics. All updates use
// relaxed atomic operations, matching the engine's own counters.
type serverCounters struct {
	connectionsAccepted atomic.Int64
	connectionsActive   atomic.Int64
	commandsProcessed   atomic.Int64
	bytesRead           atomic.Int64
	bytesWritten        atomic.Int64
}

// Server is the RESP-protocol server. One Server owns one TCP listener
// and dispatches every accepted connection against a shared *storage.Engine.
type Server struct {
	cfg      Config
	engine   *storage.Engine
	limiter  *ratelimit.Registry
	logger   logger.Logger
	handlers dispatchTable

	ln      net.Listener
	running atomic.Bool
	wg      sync.WaitGroup
	connSeq atomic.Uint64

	counters serverCounters
	metrics  *metric.Registry
}

// New creates a Server backed by engine. A nil lg falls back to
// logger.Default().
func New(cfg Config, engine *storage.Engine, lg logger.Logger) *Server {
	if cfg.Address == "" {
		cfg = DefaultConfig()
	}
	if lg == nil {
		lg = logger.Default()
	}
	return &Server{
		cfg:      cfg,
		engine:   engine,
		limiter:  ratelimit.NewRegistry(cfg.RateLimit),
		logger:   lg,
		handlers: commandTable(),
	}
}

// SetMetrics attaches a metrics registry that mirrors the server's
// connection, command, and byte counters into Prometheus alongside its
// own internal Stats(). Call before Start/Serve; nil disables export.
func (s *Server) SetMetrics(reg *metric.Registry) {
	s.metrics = reg
}

// Stats snapshots the server's connection-level counters.
func (s *Server) Stats() Stats {
	return Stats{
		ConnectionsAccepted: s.counters.connectionsAccepted.Load(),
		ConnectionsActive:   s.counters.connectionsActive.Load(),
		CommandsProcessed:   s.counters.commandsProcessed.Load(),
		BytesRead:           s.counters.bytesRead.Load(),
		BytesWritten:        s.counters.bytesWritten.Load(),
	}
}

// Start binds the listener and runs the accept loop until ctx is
// cancelled or Shutdown is called. It blocks; run it in its own
// goroutine.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the accept loop against an already-bound listener. Start
// uses it after binding s.cfg.Address; tests can bind an ephemeral port
// directly and call Serve to discover the real address beforehand.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.ln = ln
	s.running.Store(true)
	s.logger.Info("redis server listening", "address", ln.Addr().String())
	return s.acceptLoop(ctx, ln)
}

// Shutdown stops accepting new connections and waits (bounded by ctx) for
// every connection goroutine to return. Open connections are not
// interrupted: each ends on its own when the client disconnects or sends
// QUIT, on an error, or when a read or idle timeout fires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		s.counters.connectionsAccepted.Add(1)
		s.counters.connectionsActive.Add(1)
		if s.metrics != nil {
			s.metrics.ConnectionsAccepted.Inc()
			s.metrics.ConnectionsActive.Inc()
		}
		connID := s.connSeq.Add(1)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.counters.connectionsActive.Add(-1)
			if s.metrics != nil {
				defer s.metrics.ConnectionsActive.Dec()
			}
			s.serveConn(ctx, newConn(nc, connID, s.logger))
		}()
	}
}

// Conn holds per-connection state: the net.Conn, a growable read buffer
// capped at maxReadBuffer, and a buffered writer flushed once per drain
// cycle rather than once per command.
type Conn struct {
	netConn net.Conn
	buf     []byte // unparsed bytes awaiting a complete frame
	out     []byte // pending response bytes, flushed once per read

	remoteAddr string
	closed     atomic.Bool

	// logCtx carries the connection's logger and ID, and is re-enriched
	// with a command sequence number once per dispatched command so log
	// lines from a pipeline of commands can be told apart.
	logCtx context.Context
	cmdSeq uint64
}

func newConn(nc net.Conn, id uint64, base logger.Logger) *Conn {
	logCtx := logger.WithLogger(context.Background(), base)
	logCtx = logger.WithConnID(logCtx, strconv.FormatUint(id, 10))
	return &Conn{
		netConn:    nc,
		remoteAddr: nc.RemoteAddr().String(),
		logCtx:     logCtx,
	}
}

// log returns the connection-scoped logger, enriched with the connection
// ID but not yet any particular command's sequence number.
func (c *Conn) log() logger.Logger {
	return logger.L(c.logCtx)
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// hostOnly returns the connection's remote address without the port,
// suitable for per-source rate limiting.
func (c *Conn) hostOnly() string {
	host, _, err := net.SplitHostPort(c.remoteAddr)
	if err != nil {
		return c.remoteAddr
	}
	return host
}

func (c *Conn) writeReply(v resp.Value) {
	c.out = resp.AppendTo(c.out, v)
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer func() {
		_ = c.Close()
		s.limiter.Forget(c.hostOnly())
	}()

	readTimeout := s.cfg.ReadTimeout
	writeTimeout := s.cfg.WriteTimeout
	idleTimeout := s.cfg.IdleTimeout

	for {
		quit, drainErr := s.drain(c)
		if len(c.out) > 0 {
			if writeTimeout > 0 {
				_ = c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout))
			}
			n, err := c.netConn.Write(c.out)
			s.counters.bytesWritten.Add(int64(n))
			if s.metrics != nil && n > 0 {
				s.metrics.BytesWritten.Add(float64(n))
			}
			c.out = c.out[:0]
			if err != nil {
				return
			}
		}
		if drainErr != nil {
			c.log().Debug("connection closed", "remote", c.remoteAddr, "error", drainErr)
			return
		}
		if quit {
			return
		}

		deadline := readTimeout
		if len(c.buf) == 0 && idleTimeout > 0 {
			deadline = idleTimeout
		}
		if deadline > 0 {
			_ = c.netConn.SetReadDeadline(time.Now().Add(deadline))
		}

		chunk := make([]byte, 4096)
		n, err := c.netConn.Read(chunk)
		if n > 0 {
			s.counters.bytesRead.Add(int64(n))
			if s.metrics != nil {
				s.metrics.BytesRead.Add(float64(n))
			}
			c.buf = append(c.buf, chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(c.buf) > 0 {
					c.log().Warn("connection closed with truncated command", "remote", c.remoteAddr)
				}
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				c.log().Debug("connection timed out", "remote", c.remoteAddr)
			}
			return
		}
	}
}

// drain repeatedly parses and dispatches every complete frame currently
// buffered, appending each response to c.out. It returns once the parser
// reports NeedMore (nothing left to dispatch without another read) or a
// protocol error forces the connection closed. quit reports whether QUIT
// was processed.
func (s *Server) drain(c *Conn) (quit bool, err error) {
	for {
		v, n, outcome, perr := resp.Parse(c.buf)
		switch outcome {
		case resp.NeedMore:
			if len(c.buf) >= maxReadBuffer {
				c.writeReply(resp.NewError("ERR " + ErrBufferFull.Error()))
				return false, ErrBufferFull
			}
			return false, nil
		case resp.Errored:
			c.writeReply(resp.NewError("ERR protocol error: " + perr.Error()))
			return false, perr
		}

		c.buf = c.buf[n:]
		args := frameArgs(v)

		s.counters.commandsProcessed.Add(1)

		if len(args) == 0 {
			if s.metrics != nil {
				s.metrics.RecordCommand("empty", "error", 0)
			}
			c.writeReply(resp.NewError("ERR empty command"))
			if len(c.buf) == 0 {
				return quit, nil
			}
			continue
		}

		if s.limiter.Enabled() && !s.limiter.Allow(c.hostOnly()) {
			if s.metrics != nil {
				s.metrics.RateLimitRejections.Inc()
			}
			c.writeReply(resp.NewError("ERR rate limit exceeded"))
			continue
		}

		name := normalizeCommandName(args[0])
		if name == "QUIT" {
			c.writeReply(resp.NewSimpleString("OK"))
			quit = true
			return quit, nil
		}

		c.cmdSeq++
		cmdCtx := logger.WithCommandSeq(c.logCtx, strconv.FormatUint(c.cmdSeq, 10))
		logger.L(cmdCtx).Debug("dispatch command", "command", name)

		handler, ok := s.handlers[name]
		if !ok {
			if s.metrics != nil {
				s.metrics.RecordCommand(name, "unknown", 0)
			}
			c.writeReply(resp.NewError("ERR unknown command '" + name + "'"))
			continue
		}

		if s.metrics != nil {
			start := time.Now()
			reply := handler(s.engine, args)
			s.metrics.RecordCommand(name, outcomeOf(reply), time.Since(start).Seconds())
			c.writeReply(reply)
		} else {
			c.writeReply(handler(s.engine, args))
		}

		if len(c.buf) == 0 {
			return quit, nil
		}
	}
}

// outcomeOf classifies a command's reply for the commands-by-outcome
// metric: an Error-kind reply is "error", anything else is "ok".
func outcomeOf(v resp.Value) string {
	if v.Kind == resp.Error {
		return "error"
	}
	return "ok"
}

// frameArgs extracts the bulk-string arguments from a decoded command
// frame: the top level is always an array (possibly synthesized from an
// inline command by the parser). Bulk items are sub-slices of the
// connection's read buffer; the buffer is reused and grown on every
// subsequent read, so each argument is cloned here before it is handed
// to a command handler that may retain it past the current drain
// iteration (e.g. LPUSH, SET).
func frameArgs(v resp.Value) [][]byte {
	if v.Kind != resp.Array || v.Items == nil {
		return nil
	}
	out := make([][]byte, 0, len(v.Items))
	for _, item := range v.Items {
		switch item.Kind {
		case resp.Bulk:
			out = append(out, bytealloc.Clone(item.Bulk))
		case resp.SimpleString:
			out = append(out, []byte(item.Str))
		}
	}
	return out
}
