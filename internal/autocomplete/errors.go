// Package autocomplete implements the two-stage autocomplete orchestrator
// (§4.2, C2) and the exact-id feature lookup (§4.3, C3), on top of the
// planner and a backend.Backend.
package autocomplete

// InvalidParamError is a request-side validation failure (§7), surfaced
// before any backend call.
type InvalidParamError struct{ Message string }

func (e InvalidParamError) Error() string { return e.Message }

// ObjectNotFoundError is returned by Feature (§4.3) when no index resolves
// or the hit count is zero.
type ObjectNotFoundError struct{ ID string }

func (e ObjectNotFoundError) Error() string { return "object not found: " + e.ID }

// BackendUnavailableError wraps a transport or deserialization error from
// the search backend (§7).
type BackendUnavailableError struct{ Cause error }

func (e BackendUnavailableError) Error() string { return "backend unavailable: " + e.Cause.Error() }

func (e BackendUnavailableError) Unwrap() error { return e.Cause }

// InvalidJSONError is a malformed POST body (§7), surfaced by cmd/server.
type InvalidJSONError struct{ Message string }

func (e InvalidJSONError) Error() string { return e.Message }
