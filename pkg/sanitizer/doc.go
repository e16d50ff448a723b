// Package sanitizer normalizes user supplied contact data before validation and storage.
//
// All normalization functions are idempotent. Invalid input is handled without errors:
// functions return an empty string and leave the decision to the validator.
//
// Normalization includes:
//   - Names: collapse whitespace, trim leading/trailing spaces
//   - Mail addresses: trim and lowercase
//   - Comments: trim every line, collapse runs of blank lines
//   - Phone numbers: convert to E.164 format (+[country][number]) for a default region
//   - Identifiers: trim, drop empty values and duplicates
package sanitizer
