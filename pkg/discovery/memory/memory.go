// Package memory implements an in-memory service registry for tests and
// single-process runs.
package memory

import (
	"context"
	"errors"
	"sync"

	"filmdex/pkg/discovery"
)

// Registry defines an in-memory service registry.
type Registry struct {
	mu   sync.RWMutex
	data map[string]map[string]string // serviceName -> instanceID -> hostPort
}

// NewRegistry creates a new in-memory service registry instance.
func NewRegistry() *Registry {
	return &Registry{data: map[string]map[string]string{}}
}

// Register creates a service record in the registry.
func (r *Registry) Register(ctx context.Context, instanceID string, serviceName string, hostPort string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[serviceName]; !ok {
		r.data[serviceName] = map[string]string{}
	}
	r.data[serviceName][instanceID] = hostPort
	return nil
}

// Deregister removes a service record from the registry.
func (r *Registry) Deregister(ctx context.Context, instanceID string, serviceName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[serviceName]; !ok {
		return nil
	}
	delete(r.data[serviceName], instanceID)
	return nil
}

// ServiceAddresses returns the list of addresses of active instances of the
// given service.
func (r *Registry) ServiceAddresses(ctx context.Context, serviceName string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instances, ok := r.data[serviceName]
	if !ok || len(instances) == 0 {
		return nil, discovery.ErrNotFound
	}
	var res []string
	for _, hostPort := range instances {
		res = append(res, hostPort)
	}
	return res, nil
}

// ReportHealthyState pushes a healthy state to the registry.
func (r *Registry) ReportHealthyState(instanceID string, serviceName string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instances, ok := r.data[serviceName]
	if !ok {
		return errors.New("service is not registered yet")
	}
	if _, ok := instances[instanceID]; !ok {
		return errors.New("service instance is not registered yet")
	}
	return nil
}
