// Package core defines the data model and external ports shared by every
// multisect component: commits, targets, digests, probe results, the
// Runner port contract, and the taxonomy of session-fatal errors.
//
// Nothing in this package performs I/O. It exists so that internal/probecache,
// internal/validate, internal/multisect, and internal/report can all speak the
// same vocabulary without importing each other's adapters.
package core
