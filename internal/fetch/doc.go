// Package fetch retrieves website reports from the upstream reputation API
// and loads reports saved on disk.
//
// The Client issues one GET request per target URL. Requests can be routed
// through a SOCKS5 proxy, and response bodies are capped so that a
// misbehaving upstream cannot exhaust memory.
package fetch
