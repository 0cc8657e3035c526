// Package thread maps messages forwarded to operators back to the
// visitor conversation that produced them, within a bounded time and
// size window.
package thread
