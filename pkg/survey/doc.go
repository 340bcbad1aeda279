// Package survey collects responses to the weekly question and turns them
// into card requests.
//
// A [Service] sits on a [Store] ([MemoryStore] here, MongoDB in
// storage/mongo) and an optional cache.Guard. It enforces one response per
// user and question, tracks demographic follow-ups ([ExtraQuestion]) with
// their validity windows, and aggregates responses with [Tally]:
//
//   - each option's share is its vote count over all votes, in percent
//   - the overall value weights Option1..Option5 with 0, 25, 50, 75 and 100
//     and averages over all votes
//
// Both are rounded to whole percent; with no votes everything is 0.
package survey
