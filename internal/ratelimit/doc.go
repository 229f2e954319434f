// Package ratelimit guards the connection engine against a single
// misbehaving client monopolizing the command dispatcher. It is a
// resource-bound safety net, not an authentication layer: every client
// gets its own token bucket keyed by remote address, and a client that
// exceeds it is told to slow down, never refused a connection.
package ratelimit
