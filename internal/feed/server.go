package feed

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Server accepts TCP feed subscribers.
type Server struct {
	Addr string
	Hub  *Hub

	mu     sync.Mutex
	ln     net.Listener
	closed bool
	conns  sync.WaitGroup
	logger *zap.Logger
}

func NewServer(addr string, hub *Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, Hub: hub, logger: logger}
}

// Listen binds the TCP address. Run calls it when needed. After Close it
// returns net.ErrClosed.
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, net.ErrClosed
	}
	if s.ln != nil {
		return s.ln.Addr(), nil
	}
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return nil, err
	}
	s.ln = ln
	return ln.Addr(), nil
}

// Run accepts subscribers until Close is called, then returns nil. Run
// after Close returns nil without binding.
func (s *Server) Run() error {
	addr, err := s.Listen()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Info("feed listening", zap.Stringer("addr", addr))

	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.conns.Wait()
				return nil
			}
			s.logger.Warn("feed accept failed", zap.Error(err))
			continue
		}

		sub := tcpSubscriber{conn: conn}
		if err := s.Hub.subscribe(sub); err != nil {
			s.logger.Debug("feed subscribe failed", zap.Stringer("addr", conn.RemoteAddr()), zap.Error(err))
			continue
		}
		s.logger.Info("feed subscriber joined", zap.String("transport", transportTCP), zap.Stringer("addr", conn.RemoteAddr()))

		s.conns.Add(1)
		go s.serve(sub)
	}
}

// serve drains the subscriber's input until it disconnects.
func (s *Server) serve(sub tcpSubscriber) {
	defer s.conns.Done()

	sc := bufio.NewScanner(sub.conn)
	for sc.Scan() {
	}

	s.Hub.unsubscribe(sub)
	s.logger.Info("feed subscriber left", zap.String("transport", transportTCP), zap.Stringer("addr", sub.conn.RemoteAddr()))
}

// Close stops accepting and disconnects current subscribers. It is safe to
// call before Run.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	ln := s.ln
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.Hub.CloseAll()
	return err
}
