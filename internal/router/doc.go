// Package router is the upstream side of an I3 mud: it sends the startup
// handshake, reads mudmode frames from the router and dispatches each
// packet by its type string.
package router
