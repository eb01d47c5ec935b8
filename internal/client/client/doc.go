// Package client is the pdfier backend API client.
//
// # Overview
//
// The package provides:
//  1. The backend contract (see Client and its parts AuthAPI, ToolsAPI,
//     LibraryAPI and DownloadAPI).
//  2. HTTPClient, a REST/JSON implementation over net/http. Authenticated
//     calls read the access token from a TokenSource on every request and
//     send it as "Authorization: Bearer <token>".
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. A non-2xx answer is an *APIError
// carrying the status and the backend's detail text; it unwraps to
// ErrUnauthorized (401, 403), ErrQuotaExceeded (429) or ErrUnavailable
// (502, 503, 504) so callers can match with errors.Is. IsRejection tells a
// confirmed backend answer from a transport failure.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. Every call takes a context and
// honors its cancellation.
package client
