// Package transcription defines the speech-to-text provider contract used
// by the voice journal and the relay proxy.
//
// A provider creates asynchronous jobs from audio and reports their status.
// Status.Phase collapses backend statuses into in-progress, completed, and
// failed; unknown statuses count as failed.
//
// # Backends
//
//   - transcription/assemblyai: AssemblyAI v2 REST API
//   - transcription/relay: the MindEase proxy (/transcribe, /transcription/:id)
//   - transcription/whisper: a faster-whisper HTTP sidecar, run as background jobs
//
// # Usage
//
//	reg := transcription.NewRegistry()
//	reg.RegisterFactory(assemblyai.ProviderName, assemblyai.Factory())
//	p, err := transcription.Build(reg, cfg.Transcription)
//	p = transcription.Chain(p, transcription.WithLogging(log), transcription.WithTracing())
//	id, err := p.CreateJob(ctx, transcription.AudioRequest{Audio: blob})
package transcription
