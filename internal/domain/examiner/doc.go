// Package examiner implements the rule-based oral examiner: checklist keyword
// matching, the fixed turn-to-phase state machine, the heuristic responder that
// decides between interrupting, following up, escalating and advancing, and
// score and feedback aggregation over a finished transcript.
//
// Everything in this package is deterministic and free of I/O.
package examiner
