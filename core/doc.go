// Package core holds the failure taxonomy shared by every component of
// the module, plus context helpers for carrying validated claims.
//
// Every outbound-call and token-validation failure in this module is a
// *core.Error with a Kind from the taxonomy. Callers branch on the kind:
// operational kinds (transport, malformed responses) map to retry or
// alerting paths, security kinds (bad signature, unknown key, failed
// claim check) map to hard rejection of the presented token. The
// ErrTokenInvalid sentinel matches all security kinds at once.
package core
