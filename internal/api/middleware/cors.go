// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORSConfig contains CORS configuration options.
type CORSConfig struct {
	// AllowedOrigins lists origins cross-domain requests may come from.
	// "*" allows all origins.
	AllowedOrigins []string

	// AllowedMethods lists the methods allowed in cross-domain requests.
	AllowedMethods []string

	// AllowedHeaders lists the non-simple headers clients may send.
	AllowedHeaders []string

	// ExposedHeaders lists response headers exposed to browser scripts.
	ExposedHeaders []string

	// AllowCredentials allows cookies and HTTP auth in CORS requests.
	AllowCredentials bool

	// MaxAge is how long (seconds) preflight results may be cached.
	MaxAge int
}

// DefaultCORSConfig returns the default CORS configuration.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			HeaderRequestID,
		},
		ExposedHeaders: []string{
			HeaderRequestID,
		},
		AllowCredentials: false,
		MaxAge:           300,
	}
}

// CORSFromOrigins builds a CORS configuration from a comma-separated
// origin list, as read from configuration.
func CORSFromOrigins(origins string) CORSConfig {
	config := DefaultCORSConfig()

	if origins != "" && origins != "*" {
		var trimmed []string
		for _, o := range strings.Split(origins, ",") {
			if t := strings.TrimSpace(o); t != "" {
				trimmed = append(trimmed, t)
			}
		}
		config.AllowedOrigins = trimmed
	} else if origins == "*" {
		config.AllowedOrigins = []string{"*"}
	}

	return config
}

// CORS returns a CORS middleware handler with the given configuration.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   config.AllowedMethods,
		AllowedHeaders:   config.AllowedHeaders,
		ExposedHeaders:   config.ExposedHeaders,
		AllowCredentials: config.AllowCredentials,
		MaxAge:           config.MaxAge,
	})
}
