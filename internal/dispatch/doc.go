// Package dispatch turns inbound chat events into engine actions:
// commands, form answers, and operator replies. It owns the message
// templates but knows nothing about any specific chat transport.
package dispatch
