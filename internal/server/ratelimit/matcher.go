package ratelimit

import (
	"strings"
)

// unlimited endpoints are never throttled; liveness probes must always answer.
var unlimited = map[string]string{
	"/health": "GET",
}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Exact matches win over prefix matches (configured paths ending in "/").
// Returns nil when the default limit applies.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if m, ok := unlimited[path]; ok && m == method {
		return &EndpointConfig{Path: path, Method: method}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			return config
		}
	}

	return nil
}
