// Package cases provides the clinical case library used by the examiner.
//
// The built-in cases are YAML documents embedded in the binary. An optional
// overlay directory can add cases or replace built-in ones with the same ID.
// Every case is validated when the library is loaded, so a Library never
// serves a case that cannot drive a full exam.
package cases
