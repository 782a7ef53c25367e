// Package log is a small named-logger wrapper around the standard library
// logger.
//
// Each subsystem asks for its own logger and gets a stable prefix:
//
//	l := log.ForService("api")
//	l.Infof("listening on %s", addr)      // INFO [api] listening on ...
//	l.Debugf("query %q took %s", q, d)   // only with debug enabled
//
// Debug output can be enabled for everything (SetGlobalDebug, wired to the
// --debug flag) or for a single service (EnableDebugFor). SetOutput swaps the
// destination of every logger, which tests use to capture lines.
//
// The package name collides with the standard library on purpose; alias one
// of them when both are needed.
package log
