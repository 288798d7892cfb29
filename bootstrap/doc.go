// Package bootstrap runs MindEase binaries: it validates the typed config,
// initialises logging, starts registered components in order, runs
// configure and lifecycle hooks, prints a startup summary and shuts down
// gracefully on SIGINT or SIGTERM.
//
// Long-running services call Run; one-shot commands such as a batch
// transcription call RunTask.
package bootstrap
