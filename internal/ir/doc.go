// Package ir provides the canonical value types carried by predicates.
//
// This package contains value definitions only. Every other internal package
// that needs a filter value imports ir; ir imports nothing internal.
//
// Key design constraints:
//   - Values form a sealed set: Null, String, Int, Float, Bool, List
//   - Go values enter through FromGo and leave through ToGo
//   - Canonical encoding (RFC 8785 style) is the only input to value hashing
//   - Strings are NFC normalized before encoding
//   - NaN and infinities are rejected, they have no canonical form
package ir
