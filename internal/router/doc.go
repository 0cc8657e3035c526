// Package router fans completed visitor requests out to every
// registered operator and routes operator replies back to exactly the
// visitor that originated the thread.
package router
