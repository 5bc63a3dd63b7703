// Package logger provides structured logging for restclient using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Clients log through
// the global logger tagged component=restclient unless one is supplied.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("restclient")
//	log.Debug("request issued", logger.Fields("method", "GET", "uri", uri))
package logger
