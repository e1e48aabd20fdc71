// Package quiz implements self-test sessions over a knowledge base snapshot.
//
// Two session kinds share the same primitives:
//
//   - Sheet: the inline self-test of one topic. Every question gets its own
//     display mapping; answering locks that question; Reset unlocks all
//     questions without reshuffling.
//   - Exam: a multi-question sequence drawn from one or all sections, driven
//     through Setup → InProgress → Finished.
//
// # Display mapping
//
// A Mapping is a uniformly random permutation P of the option indices plus
// the display position c' of the canonical correct option, so that
// P[c'] == Question.Correct. Answers are judged on display indices against
// c'. The canonical Question.Options and Question.Correct are never written.
//
// # History writes
//
// Answering commits one kb.Attempt to the canonical question immediately.
// A locked question, a revealed exam slot, a finished exam or a cancelled
// exam never writes again, so each answer is recorded exactly once.
//
// # Concurrency
//
// Sessions are single-threaded. They mutate the shared *kb.Database in place
// and assume exclusive access: no other session or editor may mutate the
// same questions while a session is live.
package quiz
