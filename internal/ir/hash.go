package ir

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Domain prefixes for structural hashes.
// Version suffix enables future algorithm migration.
const (
	DomainValue     = "reqkey/value/v1"
	DomainField     = "reqkey/field/v1"
	DomainType      = "reqkey/type/v1"
	DomainOperator  = "reqkey/operator/v1"
	DomainPredicate = "reqkey/predicate/v1"
	DomainGroup     = "reqkey/group/v1"
	DomainOrder     = "reqkey/order/v1"
	DomainRequest   = "reqkey/request/v1"
	DomainLimit     = "reqkey/limit/v1"
	DomainHints     = "reqkey/hints/v1"
	DomainSequence  = "reqkey/sequence/v1"
)

// HashWithDomain computes a 64-bit xxhash with domain separation.
// Format: xxhash(domain + 0x00 + part0 + 0x00 + part1 ...)
// The null byte separator prevents boundary ambiguity between parts.
func HashWithDomain(domain string, parts ...string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(domain)
	for _, p := range parts {
		_, _ = d.Write([]byte{0x00})
		_, _ = d.WriteString(p)
	}
	return d.Sum64()
}

// Hash computes the structural hash of a value.
// The value kind is part of the hash, so Int(1) and Float(1) differ.
// Values that cannot be canonically encoded hash by kind only.
func Hash(v Value) uint64 {
	b, err := MarshalCanonical(v)
	if err != nil {
		return HashWithDomain(DomainValue, Kind(v))
	}
	return HashWithDomain(DomainValue, Kind(v), string(b))
}

// HashUnordered computes an order-independent hash of a list's elements.
// Element hashes are combined by wrapping addition.
func HashUnordered(list List) uint64 {
	h := HashWithDomain(DomainValue, "set")
	for _, elem := range list {
		h += Hash(elem)
	}
	return h
}

// HashSequence combines already-computed hashes in order.
// Unlike HashUnordered, swapping two elements changes the result.
func HashSequence(domain string, hashes ...uint64) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(domain)
	var buf [8]byte
	for _, h := range hashes {
		binary.BigEndian.PutUint64(buf[:], h)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
