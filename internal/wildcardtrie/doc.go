// Package wildcardtrie implements a level-separated trie with MQTT-style
// wildcard matching, parameterized by configurable separator and wildcard
// tokens.
//
// It underlies both the client's subscription database and the reference
// local broker (internal/localbroker). Splitting is purely literal:
// multi-character separators and wildcards behave exactly like
// single-character ones, and a query's own wildcard-looking tokens are
// treated as ordinary literals, never as patterns.
package wildcardtrie
