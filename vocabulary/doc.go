// Package vocabulary loads term vocabularies for the glossary index.
//
// A vocabulary file is YAML with a single top-level "terms" mapping from key
// to entry:
//
//	terms:
//	  ato:
//	    text: ATO
//	    type: acronym
//	    brief: Air Tasking Order
//	    definition: |-
//	      Refers to the operations and tasks the Air Force completes on a
//	      pre-determined cycle.
//
// # Fields
//
//   - text: the term as written in messages; blank makes the entry lookup-only
//   - type: acronym, jargon, or omitted for unclassified terms
//   - brief: short gloss, optional
//   - definition: long-form explanation, optional
//
// # Multiple Files
//
// [LoadGlob] expands doublestar patterns ("glossary/**/*.yaml") and merges the
// files in pattern order, sorted lexically within each pattern. A key defined
// in more than one file takes the entry from the last file; every override is
// reported in the result.
//
// # Built-in Vocabulary
//
// [Builtin] returns the embedded default vocabulary as a fresh map on every
// call, so callers may add to it before compiling.
package vocabulary
