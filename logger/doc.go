// Package logger provides structured logging for MindEase services on top
// of zerolog.
//
// Loggers are scoped per component and take optional field maps:
//
//	log := logger.Get("journal")
//	log.Info("job submitted", logger.RecordingFields(rec.ID, jobID))
//
// Configuration:
//
//	logging:
//	  level: "info"
//	  format: "json"
package logger
