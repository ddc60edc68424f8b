// Package log is a small wrapper around the standard library logger that
// gives every component of the search core its own named logger.
//
// Every line carries a `[name>]` marker so output from the index, the
// recency store, the facade or the API can be told apart with grep:
//
//	l := log.ForService("recent")
//	l.Infof("loaded %d recent searches", n)
//	l.Warnf("persisting recent searches: %v", err)
//	l.Debugf("promoted %q", q) // only when debug is on
//
// Debug output is off by default. It can be enabled for every logger
// with SetGlobalDebug (the root --debug flag does this) or for a single
// component with EnableDebugFor.
//
// SetOutput redirects all loggers, including the ones already handed
// out, which is how tests capture log lines in a bytes.Buffer.
//
// The package name collides with the standard library on purpose. Alias
// one of them when both are needed:
//
//	import (
//		stdlog "log"
//
//		"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/log"
//	)
package log
