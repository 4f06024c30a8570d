// Package websocket streams analysis run events to subscribed clients.
//
// A Hub owns the set of subscribers and fans out every published event.
// Each Client runs a write pump that forwards queued events and pings the
// peer, and a read pump that only watches for the peer going away.
// Subscribers that fall behind are disconnected rather than slowing the
// analysis service down.
package websocket
