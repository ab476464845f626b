// Package log provides named, per-component loggers on top of log/slog.
//
// Every line carries a `[name>]` marker and a `service` attribute so output
// from the fetcher, the assembler and the API server can be told apart:
//
//	fetch := log.ForService("fetch")
//	fetch.Infof("fetching %s row %d", entry.Source, entry.Row)
//	fetch.Debugf("payload is %d bytes", n) // only with debug enabled
//
// Debug output is off by default. It can be enabled for every component
// (SetGlobalDebug, wired to the CLI --debug flag) or only for some
// (EnableDebugFor).
//
// Output goes to stderr unless redirected with SetOutput. Tests redirect to a
// bytes.Buffer and assert on its contents.
//
// All exported functions are safe for concurrent use.
package log
