// Package session drives visitors through the multi-step collaboration
// form, one prompt per slot, and hands the completed record off for
// broadcast to the operator pool.
package session
