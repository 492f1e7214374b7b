package main

import (
	"github.com/meshwire/basp/adminsock"
)

func (d *daemon) handleAdmin(req adminsock.Request) adminsock.Response {
	switch req.Action {
	case adminsock.ActionRoutes:
		return d.handleRoutesQuery()
	case adminsock.ActionPublished:
		return d.handlePublishedQuery()
	case adminsock.ActionHeartbeats:
		return d.handleHeartbeatsQuery()
	default:
		return adminsock.Response{OK: false, Error: "unknown action: " + req.Action}
	}
}

func (d *daemon) handleRoutesQuery() adminsock.Response {
	direct, indirect := d.eng.Routes.Snapshot()

	snapshot := adminsock.RoutesSnapshot{
		Direct:   make([]adminsock.RouteEntry, 0, len(direct)),
		Indirect: make([]adminsock.IndirectEntry, 0, len(indirect)),
	}

	for _, e := range direct {
		snapshot.Direct = append(snapshot.Direct, adminsock.RouteEntry{
			Node:   e.Node.String(),
			Handle: uint64(e.Handle),
		})
	}

	for _, e := range indirect {
		hops := make([]string, 0, len(e.Hops))
		for _, h := range e.Hops {
			hops = append(hops, h.String())
		}
		snapshot.Indirect = append(snapshot.Indirect, adminsock.IndirectEntry{
			Node: e.Node.String(),
			Hops: hops,
		})
	}

	return adminsock.Response{OK: true, Data: snapshot}
}

func (d *daemon) handlePublishedQuery() adminsock.Response {
	entries := make([]adminsock.PublishedEntry, 0)

	for port, e := range d.eng.Published.Snapshot() {
		sigs := make([]string, 0, len(e.Signatures))
		for s := range e.Signatures {
			sigs = append(sigs, string(s))
		}

		entries = append(entries, adminsock.PublishedEntry{
			Port:       port,
			Node:       e.Addr.Node.String(),
			Actor:      uint32(e.Addr.Actor),
			Signatures: sigs,
		})
	}

	return adminsock.Response{OK: true, Data: entries}
}

func (d *daemon) handleHeartbeatsQuery() adminsock.Response {
	seen := d.heartbeats.snapshot()
	entries := make([]adminsock.HeartbeatEntry, 0, len(seen))

	for _, s := range seen {
		entries = append(entries, adminsock.HeartbeatEntry{
			Node:     s.Node.String(),
			LastSeen: s.LastSeen,
		})
	}

	return adminsock.Response{OK: true, Data: entries}
}
