package transport

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Subscriber is the dashboard/campaign side of the connection: it receives
// SnapshotEnvelope pushes and can send CommandEnvelope frames back.
type Subscriber struct {
	socketPath string
	conn       net.Conn
	connMu     sync.Mutex

	latestSnapshot atomic.Value // SnapshotEnvelope

	snapshotsReceived int64
	reconnects        int64
	errors            int64

	running int32
	stopCh  chan struct{}
	wg      sync.WaitGroup

	onSnapshot   func(SnapshotEnvelope)
	onConnect    func()
	onDisconnect func()
}

// NewSubscriber returns a subscriber targeting socketPath.
func NewSubscriber(socketPath string) *Subscriber {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Subscriber{socketPath: socketPath, stopCh: make(chan struct{})}
}

func (s *Subscriber) OnSnapshot(fn func(SnapshotEnvelope)) { s.onSnapshot = fn }
func (s *Subscriber) OnConnect(fn func())                  { s.onConnect = fn }
func (s *Subscriber) OnDisconnect(fn func())                { s.onDisconnect = fn }

// Start connects (with retry) and begins the read loop.
func (s *Subscriber) Start() error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return nil
	}
	s.wg.Add(1)
	go s.connectionLoop()
	return nil
}

// Stop closes the connection and waits for the read loop to exit.
func (s *Subscriber) Stop() {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return
	}
	close(s.stopCh)
	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.connMu.Unlock()
	s.wg.Wait()
}

// LatestSnapshot returns the most recently received snapshot, if any.
func (s *Subscriber) LatestSnapshot() (SnapshotEnvelope, bool) {
	if v := s.latestSnapshot.Load(); v != nil {
		return v.(SnapshotEnvelope), true
	}
	return SnapshotEnvelope{}, false
}

// SendCommand writes a CommandEnvelope to the active connection, if any.
func (s *Subscriber) SendCommand(cmd CommandEnvelope) error {
	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()
	if conn == nil {
		return io.ErrClosedPipe
	}
	conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return WriteMessage(conn, MsgTypeCommand, cmd)
}

// Stats returns received/reconnect/error counters.
func (s *Subscriber) Stats() (received, reconnects, errs int64) {
	return atomic.LoadInt64(&s.snapshotsReceived), atomic.LoadInt64(&s.reconnects), atomic.LoadInt64(&s.errors)
}

func (s *Subscriber) connectionLoop() {
	defer s.wg.Done()
	for atomic.LoadInt32(&s.running) == 1 {
		conn, err := ConnectPlatform(s.socketPath)
		if err != nil {
			select {
			case <-s.stopCh:
				return
			case <-time.After(ReconnectDelay):
				continue
			}
		}

		s.connMu.Lock()
		s.conn = conn
		s.connMu.Unlock()
		if s.onConnect != nil {
			s.onConnect()
		}

		s.readLoop(conn)

		s.connMu.Lock()
		s.conn = nil
		s.connMu.Unlock()
		if s.onDisconnect != nil {
			s.onDisconnect()
		}
		atomic.AddInt64(&s.reconnects, 1)

		select {
		case <-s.stopCh:
			return
		case <-time.After(ReconnectDelay):
		}
	}
}

func (s *Subscriber) readLoop(conn net.Conn) {
	for atomic.LoadInt32(&s.running) == 1 {
		conn.SetReadDeadline(time.Now().Add(ReadTimeout))
		msgType, data, err := ReadMessage(conn)
		if err != nil {
			if err == io.EOF {
				return
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			atomic.AddInt64(&s.errors, 1)
			return
		}
		switch msgType {
		case MsgTypeSnapshot:
			snap, err := DecodeSnapshot(data)
			if err != nil {
				atomic.AddInt64(&s.errors, 1)
				continue
			}
			s.latestSnapshot.Store(*snap)
			atomic.AddInt64(&s.snapshotsReceived, 1)
			if s.onSnapshot != nil {
				s.onSnapshot(*snap)
			}
		case MsgTypePing:
			conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
			WriteMessage(conn, MsgTypePong, nil)
		}
	}
}
