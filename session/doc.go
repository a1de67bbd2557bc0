// Package session holds the process-wide session record: the authenticated
// user payload, the credential token, pending flags, and per-operation
// failures. State is mutated only through named transition methods so that
// every write site reads as a lifecycle step rather than an ad-hoc field
// assignment.
package session
