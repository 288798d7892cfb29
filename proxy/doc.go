// Package proxy is the HTTP face of MindEase. It relays browser uploads to
// the configured transcription backend, so the backend's API key never
// leaves the server, and serves the companion conversation.
//
// Routes:
//
//	POST   /transcribe                  multipart "audio" -> 202 {"transcriptId"}
//	GET    /transcription/:id           {"status","text"}
//	GET    /transcription/:id/audio     archived upload (WithAudioArchive)
//	GET    /companion/:userId/messages  history and quick prompts
//	POST   /companion/:userId/messages  {"text"} -> classified reply
//	DELETE /companion/:userId/messages  clears history
package proxy
