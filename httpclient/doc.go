// Package httpclient is the outbound HTTP client used by the transcription
// backends.
//
// Failures are classified into *Error values (timeout, connection, auth,
// not_found, rate_limit, validation, server) so callers and the retry
// policy can decide what to do:
//
//	c, _ := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.assemblyai.com/v2",
//	    Auth:    httpclient.APIKeyHeader(key, "authorization"),
//	    Retry:   httpclient.DefaultRetryConfig(),
//	})
//	job, err := httpclient.PostJSON[jobResponse](ctx, c, "/transcript", body)
package httpclient
