// Package storage archives recording audio.
//
// Backends register themselves on import:
//
//	import (
//		"github.com/kbukum/mindease/storage"
//		_ "github.com/kbukum/mindease/storage/local"
//		_ "github.com/kbukum/mindease/storage/s3"
//	)
//
//	store, err := storage.New(ctx, cfg.Storage, log)
//	app.RegisterComponent(storage.NewComponent(store, cfg.Storage))
//
// The proxy writes each upload under audio/<transcriptId><ext> and serves
// it back from GET /transcription/:id/audio.
package storage
