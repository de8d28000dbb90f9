// Package httputil provides HTTP plumbing for the completion-API clients.
//
// # Overview
//
//   - [Client]: JSON POST with default headers, status classification and retry
//   - [Retry]: automatic retry with exponential backoff
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError].
// [Client] wraps network failures, 429 responses and 5xx responses that way;
// every other status fails immediately with a [StatusError]:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.PostJSON(ctx, url, payload, &out)
//	})
//
// # Configuration
//
// Default settings suit a chat-completion endpoint:
//
//   - Request timeout: 60 seconds
//   - Max attempts: 3
//   - Base backoff: 1 second
package httputil
