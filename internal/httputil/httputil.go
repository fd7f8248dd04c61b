// Package httputil resolves service base URLs through the registry.
package httputil

import (
	"context"
	"fmt"
	"math/rand"

	"filmdex/pkg/discovery"
)

// ServiceURL returns the base URL of a randomly chosen active instance of
// the given service.
func ServiceURL(ctx context.Context, serviceName string, registry discovery.Registry) (string, error) {
	addrs, err := registry.ServiceAddresses(ctx, serviceName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s", addrs[rand.Intn(len(addrs))]), nil
}
