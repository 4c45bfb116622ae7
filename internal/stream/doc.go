// Package stream implements the WebSocket fan-out hub.
//
// The hub:
//   - Upgrades /api/v1/stream requests and tracks connected clients
//   - Broadcasts registry and news events as JSON frames
//   - Pings clients and drops the ones that stop answering
//   - Disconnects slow clients instead of blocking the broadcast
package stream
