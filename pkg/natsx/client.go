// Package natsx holds NATS connection helpers.
package natsx

import (
	"strings"

	"github.com/nats-io/nats.go"
)

// ClientName identifies brainstorm connections on the NATS server.
const ClientName = "brainstorm"

// NewClient connects to the NATS server at url, or nats.DefaultURL when url is
// empty. Without options the connection is named ClientName and compressed.
func NewClient(url string, opts ...nats.Option) (*nats.Conn, error) {
	if strings.TrimSpace(url) == "" {
		url = nats.DefaultURL
	}
	if len(opts) == 0 {
		opts = append(opts, nats.Name(ClientName), nats.Compression(true))
	}
	return nats.Connect(url, opts...)
}
