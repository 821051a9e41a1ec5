// Package slog provides logging decorators for querylist services.
package slog
