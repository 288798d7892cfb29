// Package redis backs MindEase's key-value storage with Redis.
//
// TypedStore implements provider.ContextStore, so the companion history
// ("ai_chat:<user>"), the transcript archive ("voice_journal:<user>"),
// whisper jobs, and the proxy's transcript cache can move from process
// memory to Redis by configuration alone:
//
//	client, err := redis.New(cfg.Redis, log)
//	history := redis.NewTypedStore[companion.History](client)
//	app.RegisterComponent(redis.NewComponent(client))
package redis
