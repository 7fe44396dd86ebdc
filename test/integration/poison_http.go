package integration

import (
	"context"
	"fmt"
	"net"
	"net/http"
)

func init() {
	if !skip {
		return
	}
	http.DefaultTransport = poisonedTransport("DefaultTransport")
}

func poisonedTransport(name string) *http.Transport {
	return &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			const msg = `unable to dial %s!%s: %s disallowed outside integration tests`
			return nil, fmt.Errorf(msg, network, addr, name)
		},
	}
}
