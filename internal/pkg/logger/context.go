// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package logger

import "context"

type contextKey struct{}

// IntoContext returns a copy of ctx carrying the given logger.
func IntoContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger if none
// is present. Always safe to call.
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return Nop()
	}
	if l, ok := ctx.Value(contextKey{}).(*Logger); ok && l != nil {
		return l
	}
	return Nop()
}
