// Package session owns one mudmode connection to an upstream I3 router.
//
// Ownership boundary:
// - dialing with a connect timeout
// - buffering the byte stream into whole frames
// - decoding frames into packets and writing packets back
//
// A Conn is one TCP stream with no reconnection; any fatal framing error
// ends it.
package session
