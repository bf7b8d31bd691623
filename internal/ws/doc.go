// Package ws provides WebSocket connection handling and message routing
// for collaborative editing sessions.
//
// The package implements:
//   - Client: A single live WebSocket connection with a buffered outbound queue
//   - PresenceTracker: Maps sessions to their sets of live connections
//   - Hub: Fans messages out to a session's connections, pruning dead peers
//   - Channel: Per-connection protocol handler (join, ping, code-update,
//     cursor-position, language-change)
//   - Gateway: Validates the session, upgrades the connection and owns the
//     receive loop lifetime
package ws
