// Package version reports build information for MindEase binaries.
//
// Version, commit and build time can be stamped at link time:
//
//	go build -ldflags "-X github.com/kbukum/mindease/version.Version=1.0.0"
//
// Unset values fall back to the module's embedded build info.
package version
