// Package resp implements the RESP wire protocol: the five framed value
// types, the inline command dialect, and an incremental parser that
// never blocks on a read — it reports NeedMore instead, so a caller
// driving a non-blocking connection loop can hand it whatever bytes
// have arrived so far and retry once more arrive.
package resp
