package adminsock

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"os"

	"go.uber.org/zap"
)

// Handler answers one Request with a Response. Implementations live in
// cmd/baspd and close over the running engine's routing table and
// published-actor registry.
type Handler func(req Request) Response

// Server listens on a Unix domain socket and answers one Request per
// line with one Response per line, mirroring the teacher's
// NamingClient request/reply shape but generalized to JSON lines
// instead of a Fabric-specific message envelope.
type Server struct {
	log      *zap.Logger
	handler  Handler
	listener *net.UnixListener
	path     string
}

// New creates a Server. log may be nil, in which case a no-op logger is
// used.
func New(handler Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{handler: handler, log: log}
}

// Listen binds the Unix domain socket at path, removing any stale
// socket file left behind by a previous, uncleanly stopped instance.
func (s *Server) Listen(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return err
	}

	l, err := net.ListenUnix("unix", addr)
	if err != nil {
		return err
	}

	s.listener = l
	s.path = path

	return nil
}

// Serve accepts connections until the listener is closed, handling each
// on its own goroutine. It returns nil when Close stops the listener.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		go s.handle(conn)
	}
}

// Close stops accepting connections and removes the socket file.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}

	err := s.listener.Close()
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
		err = rmErr
	}

	return err
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			_ = enc.Encode(Response{OK: false, Error: "malformed request: " + err.Error()})
			continue
		}

		resp := s.dispatch(req)
		if err := enc.Encode(resp); err != nil {
			s.log.Warn("adminsock: write response failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	if req.Action == ActionPing {
		return Response{OK: true, Data: "pong"}
	}

	if s.handler == nil {
		return Response{OK: false, Error: "no handler registered"}
	}

	return s.handler(req)
}
