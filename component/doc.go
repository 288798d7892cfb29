// Package component defines lifecycle-managed infrastructure.
//
// A Registry starts components in registration order and stops them in
// reverse; bootstrap drives it. Func adapts closures for parts that need no
// type of their own, such as the journal controller's shutdown hook.
package component
