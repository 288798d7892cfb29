package logger

import "time"

// Field keys shared by every MindEase component.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldTraceID     = "trace_id"
	FieldUserID      = "user_id"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldProvider    = "provider"
	FieldRecordingID = "recording_id"
	FieldJobID       = "job_id"
	FieldState       = "state"
	FieldAttempt     = "attempt"
	FieldIntent      = "intent"
)

// Fields builds a field map from alternating key-value pairs.
// Non-string keys and a trailing odd value are dropped.
//
//	log.Info("submitted", logger.Fields(logger.FieldJobID, id))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	m := map[string]interface{}{FieldOperation: op}
	if err != nil {
		m[FieldError] = err.Error()
	}
	return m
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}

// RecordingFields identifies a voice-journal recording and its remote job.
func RecordingFields(recordingID, jobID string) map[string]interface{} {
	m := map[string]interface{}{FieldRecordingID: recordingID}
	if jobID != "" {
		m[FieldJobID] = jobID
	}
	return m
}
