// Package shutdown provides graceful shutdown for FlashKV.
//
// This package handles process termination signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Timeout-based forced shutdown
//   - Cleanup callback registration
//   - Shutdown coordination
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown("redis-server", func(ctx context.Context) error { return srv.Shutdown(ctx) })
//	go func() { _ = h.Wait() }()
//	<-h.Done()
package shutdown
