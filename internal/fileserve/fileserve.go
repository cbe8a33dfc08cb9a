// Package fileserve serves the serve verb's endpoints (channels.conf and
// generated XMLTV) over HTTP/2 cleartext (h2c), with a bind-address guard against
// accidentally exposing the server beyond localhost.
package fileserve

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ErrNotPublic is returned by Guard when addr is not loopback and public
// wasn't explicitly requested.
type ErrNotPublic struct {
	Addr string
}

func (e *ErrNotPublic) Error() string {
	return fmt.Sprintf("fileserve: bind address %q is not loopback; pass --public to confirm", e.Addr)
}

// Guard rejects binding to a non-loopback address unless public is true.
func Guard(addr string, public bool) error {
	if public {
		return nil
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	// An empty host (e.g. ":8080") binds every interface, not just loopback.
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip != nil && ip.IsLoopback() {
		return nil
	}
	return &ErrNotPublic{Addr: addr}
}

// Serve starts an h2c-wrapped HTTP server on addr using mux, blocking until
// the listener errors. Callers must call Guard first.
func Serve(addr string, mux *http.ServeMux) error {
	h2s := &http2.Server{}
	handler := h2c.NewHandler(mux, h2s)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	if err := srv.ListenAndServe(); err != nil && !strings.Contains(err.Error(), "Server closed") {
		return fmt.Errorf("fileserve: %w", err)
	}
	return nil
}
