// Package sanitizer normalizes free-text input before validation and storage.
//
// All functions are idempotent and never fail: invalid input becomes an empty
// string or an empty slice, which validation then rejects where a value is
// required.
package sanitizer
