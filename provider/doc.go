// Package provider holds the small framework MindEase uses for swappable
// backends: a Provider interface, name-keyed factory registries, and the
// ContextStore abstraction for typed key-value state.
//
//	reg := provider.NewRegistry[transcription.Provider]()
//	reg.RegisterFactory("assemblyai", assemblyai.Factory)
//	p, err := reg.Create(cfg.Provider, cfg.Providers[cfg.Provider])
//
// ContextStore has two implementations: MemoryStore here and
// redis.TypedStore.
package provider
