// Package protocol owns the I3 notation contract.
//
// Ownership boundary:
// - value model (strings, integers, floats, lists, ordered maps)
// - notation parser and encoder
// - envelope validation for outbound packets
//
// Framing lives in protocol/frame and the three-view packet facade in
// protocol/packet. Nothing in this package logs or performs I/O.
package protocol
