// Package log is hackfinder's small wrapper around the standard library
// logger.
//
// Every component asks for a named logger and writes through it:
//
//	l := log.ForService("storage")
//	l.Infof("opened index %s", path)
//	l.Debugf("fts query %q", match) // printed only when debug is on
//
// Each line carries the level and the service name:
//
//	2025/01/02 10:11:12.123456 INFO [storage>] opened index /tmp/hacks.db
//
// Debug output is off by default. The root --debug flag calls
// SetGlobalDebug(true); EnableDebugFor switches it on for a single service.
//
// All loggers share one destination, stderr unless SetOutput or
// SetOutputFile says otherwise. Existing loggers follow the change.
//
// The package name shadows the standard library's log; alias one of them
// when both are needed.
package log
