// Package node implements the behavior shared by every Kvik node type:
// message ID generation and duplicate detection, replay-safe timestamp
// validation, and the RSSI report topic builder.
//
// internal/client holds a *Base to get all of this for free, the same way
// the reference implementation's generic node type underlies its client
// and gateway node types.
package node
