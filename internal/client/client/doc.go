// Package client is the transport to the invoice backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): Ping,
//     CurrentUser, Login, Register, Logout and the invoice calls.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that injects the
//     bearer token through a round-tripper, tags each request with an
//     X-Request-ID and maps HTTP outcomes to sentinel errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable (transport failure or timeout), ErrUnauthorized
// (401 or 422) and ErrNoToken. Every non-2xx status is an *APIError carrying
// the server message, so a rejected login still exposes its reason.
//
// All operations accept context.Context and honor cancellation and timeouts.
// HTTPClient is safe for concurrent use.
package client
