// Package kb defines the personal knowledge base snapshot and the operations
// that reshape it.
//
// A Database owns an ordered list of sections, each section owns its topics,
// each topic owns its links and its question bank, and each question owns an
// append-only attempt history. The package never performs I/O: persistence,
// import and export live in sibling packages and exchange *Database values.
//
// # Invariants
//
// Canonical option order: Question.Correct is a 0-based index into
// Question.Options as authored. Quiz and exam code shuffles a display
// permutation over indices and never rewrites either field.
//
// Append-only history: attempts are only ever added through
// Question.Record. No code path edits or removes an attempt except deleting
// the owning question.
//
// All-or-nothing edits: every *Edit type validates on a copy and assigns the
// result only when validation passes, so a rejected edit leaves the snapshot
// untouched.
//
// # Exclusive access
//
// A *Database is shared mutable state. Callers must guarantee that no two
// goroutines mutate the same snapshot concurrently; pointers handed out by
// the finders (Section, Topic, Question) stay valid only until an Add or
// Delete call reshapes the owning slice.
package kb
