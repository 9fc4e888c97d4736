// Package sanitizer normalizes free text before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input is never an error; it normalizes to the
// empty string and is left for validators to reject.
package sanitizer
