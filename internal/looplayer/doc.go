// Package looplayer provides an in-memory locallayer.LocalLayer used by
// tests and the CLI demo mode. It logs every message sent through it and
// lets a test queue up canned responses to hand back to the caller's
// receive callback, without any real transport underneath.
package looplayer
