package main

import (
	"fmt"
	"time"

	"github.com/meshwire/basp/adminsock"
	"github.com/meshwire/basp/config"
	"github.com/meshwire/basp/engine"
	"github.com/meshwire/basp/node"
	"github.com/meshwire/basp/tcptransport"
	"go.uber.org/zap"
)

// daemon wires config, the TCP embedder, the BASP engine and the admin
// socket into one running instance, the way the teacher's transport
// server and federation table are wired together by an owning broker.
type daemon struct {
	cfg  *config.Config
	self node.Id
	log  *zap.Logger

	embedder   *tcptransport.Embedder
	eng        *engine.Engine
	admin      *adminsock.Server
	heartbeats *heartbeatTracker

	stopHeartbeat chan struct{}
}

func newDaemon(cfg *config.Config, self node.Id, log *zap.Logger) *daemon {
	d := &daemon{cfg: cfg, self: self, log: log, stopHeartbeat: make(chan struct{})}

	d.heartbeats = newHeartbeatTracker()
	d.embedder = tcptransport.New(d.onInbound, log.Named("transport"))
	d.eng = engine.New(self, d.embedder, newLoggingCallee(log.Named("callee"), d.heartbeats), newLoggingHooks(log.Named("hooks")))
	d.admin = adminsock.New(d.handleAdmin, log.Named("adminsock"))

	return d
}

// onInbound adapts engine.State, the state machine's own three-value
// result type, to tcptransport.ReceiveState, which the embedder expects
// so the two packages stay decoupled from one another.
func (d *daemon) onInbound(handle node.ConnHandle, buf []byte, isPayload bool) tcptransport.ReceiveState {
	return mapEngineState(d.eng.Receive(handle, buf, isPayload))
}

func mapEngineState(s engine.State) tcptransport.ReceiveState {
	switch s {
	case engine.AwaitPayload:
		return tcptransport.AwaitPayload
	case engine.CloseConnection:
		return tcptransport.CloseConnection
	default:
		return tcptransport.AwaitHeader
	}
}

func (d *daemon) run() error {
	if err := d.embedder.Listen(d.cfg.ListenAddr); err != nil {
		return fmt.Errorf("baspd: listen %s: %w", d.cfg.ListenAddr, err)
	}
	d.log.Info("listening", zap.String("addr", d.cfg.ListenAddr), zap.Stringer("self", d.self))

	if err := d.admin.Listen(d.cfg.AdminSocket); err != nil {
		return fmt.Errorf("baspd: admin socket %s: %w", d.cfg.AdminSocket, err)
	}
	d.log.Info("admin socket ready", zap.String("path", d.cfg.AdminSocket))

	go func() {
		if err := d.admin.Serve(); err != nil {
			d.log.Warn("admin socket stopped", zap.Error(err))
		}
	}()

	go d.heartbeatLoop()

	for _, peer := range d.cfg.SeedPeers {
		if err := d.dialSeed(peer); err != nil {
			d.log.Warn("seed dial failed", zap.String("addr", peer), zap.Error(err))
		}
	}

	return d.embedder.Serve()
}

func (d *daemon) dialSeed(addr string) error {
	handle, err := d.embedder.Dial(addr)
	if err != nil {
		return err
	}

	if err := d.eng.WriteServerHandshake(d.embedder.WriteBuffer(handle), 0); err != nil {
		return err
	}

	return d.embedder.Flush(handle)
}

func (d *daemon) heartbeatLoop() {
	ticker := time.NewTicker(d.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.eng.HandleHeartbeatBroadcast()
		case <-d.stopHeartbeat:
			return
		}
	}
}

func (d *daemon) stop() error {
	close(d.stopHeartbeat)
	_ = d.admin.Close()
	return d.embedder.Shutdown()
}
