// Package operator tracks the pool of registered team members that
// visitor messages are routed to. Registration requires the shared
// team secret; the set never shrinks within a process lifetime.
package operator
