// Package glossary compiles a closed vocabulary of terms (acronyms, jargon) into
// a TermIndex that answers "is this token a known term?" cheaply.
//
// # Construction
//
// Every term's display text is normalized (see [Normalize]) and hashed with
// SHA-256. The digests are OR-ed together into a single 32-byte [Fingerprint].
// Alongside the fingerprint the index keeps an exact table of records keyed by
// the vocabulary key.
//
//	ix, err := glossary.Compile(map[string]glossary.Entry{
//	    "ato": {Text: "ATO", Brief: "Air Tasking Order", Kind: glossary.KindAcronym},
//	})
//
// # Probing
//
// Probe digests the candidate and checks that every bit of the digest is set
// in the fingerprint:
//
//   - If the check fails the candidate is definitely not a term.
//   - If it passes the candidate may be a term and the exact table decides.
//
// The filter is a single-digest union rather than a k-hash Bloom filter, so the
// false-positive rate climbs quickly with vocabulary size: with a few dozen
// terms nearly every bit is set and the exact table does most of the work.
// False positives never reach the caller.
//
// # Concurrency
//
// A TermIndex is immutable once compiled and safe for concurrent use without
// locking. To change the vocabulary compile a new index and publish it through
// a [Handle].
package glossary
