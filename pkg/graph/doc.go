// Package graph implements the pattern index: a token tree over rule paths
// with backtracking wildcard search.
//
// A path has three segments (input, that, topic) joined by the separator
// tokens normalize.ThatToken and normalize.TopicToken. Each node keeps its
// literal children in a map and its two wildcard children in dedicated
// slots, so that selection order at every level is fixed:
//
//  1. the literal child equal to the current token
//  2. the restrictive wildcard "_"
//  3. the permissive wildcard "*"
//
// Wildcards consume one or more tokens, shortest span first, and never
// consume a separator. The first terminal reached in this order wins.
//
// # Concurrency
//
// Graph is safe for concurrent use. Match takes a read lock; Insert takes
// the write lock. A rule inserted while a match is in progress is only
// visible to later matches.
package graph
