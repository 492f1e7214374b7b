// Package adminsock is a small newline-delimited-JSON request/reply
// protocol over a Unix domain socket, used by baspctl to introspect a
// running baspd instance. It generalizes the teacher's bespoke
// NamingClient query protocol (a named action plus arguments, answered
// by a single reply) away from its Fabric-specific wire format.
package adminsock

import "time"

// Request names one query and its arguments. Action selects the handler;
// Args is free-form per action.
type Request struct {
	Action string            `json:"action"`
	Args   map[string]string `json:"args,omitempty"`
}

// Response answers a Request. Exactly one of Data or Error is set.
type Response struct {
	OK    bool        `json:"ok"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

const (
	// ActionRoutes returns the current direct and indirect routing
	// table contents.
	ActionRoutes = "routes"

	// ActionPublished returns the published-actor registry snapshot.
	ActionPublished = "published"

	// ActionPing is a liveness check; Data is the string "pong".
	ActionPing = "ping"

	// ActionHeartbeats returns the last-seen time for each direct peer.
	ActionHeartbeats = "heartbeats"
)

// RouteEntry is one row of the ActionRoutes response's direct table.
type RouteEntry struct {
	Node   string `json:"node"`
	Handle uint64 `json:"handle"`
}

// IndirectEntry is one row of the ActionRoutes response's indirect table.
type IndirectEntry struct {
	Node string   `json:"node"`
	Hops []string `json:"hops"`
}

// RoutesSnapshot is the ActionRoutes response payload.
type RoutesSnapshot struct {
	Direct   []RouteEntry    `json:"direct"`
	Indirect []IndirectEntry `json:"indirect"`
}

// PublishedEntry is one row of the ActionPublished response.
type PublishedEntry struct {
	Port       uint16   `json:"port"`
	Node       string   `json:"node"`
	Actor      uint32   `json:"actor"`
	Signatures []string `json:"signatures"`
}

// HeartbeatEntry is one row of the ActionHeartbeats response.
type HeartbeatEntry struct {
	Node     string    `json:"node"`
	LastSeen time.Time `json:"last_seen"`
}
