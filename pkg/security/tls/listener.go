package tls

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"sync"
	"time"
)

// DefaultHandshakeTimeout bounds a handshake when ListenerOptions leaves it
// unset.
const DefaultHandshakeTimeout = 10 * time.Second

// Outcome is the result of one TLS handshake attempt.
type Outcome int

const (
	// Established means the handshake completed and the connection is
	// handed to Accept.
	Established Outcome = iota
	// Rejected means the handshake failed; the connection was closed.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Established:
		return "established"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// HandshakeResult describes one handshake attempt.
type HandshakeResult struct {
	Outcome    Outcome
	RemoteAddr net.Addr
	Duration   time.Duration

	// Conn is the established connection. Nil when rejected.
	Conn *tls.Conn

	// Err is a *HandshakeError when rejected.
	Err error
}

// ListenerOptions configures NewListener.
type ListenerOptions struct {
	// HandshakeTimeout bounds each handshake. Default: 10s.
	HandshakeTimeout time.Duration

	// Logger receives rejected handshakes and the terminal accept error.
	Logger *slog.Logger

	// OnHandshake, if set, is called for every handshake attempt from the
	// handshaking goroutine.
	OnHandshake func(HandshakeResult)
}

// Listener wraps a raw listener and yields only connections whose TLS
// handshake succeeded. Handshakes run concurrently, one goroutine per
// connection, so a slow client never blocks others.
//
// A failed handshake is logged and dropped. A failure of the raw listener is
// terminal: Accept returns an *AcceptError from then on. After Close, Accept
// returns net.ErrClosed.
type Listener struct {
	raw     net.Listener
	config  *tls.Config
	timeout time.Duration
	logger  *slog.Logger
	hook    func(HandshakeResult)

	conns chan *tls.Conn

	// ctx is cancelled on Close or a terminal error to abort pending
	// handshakes.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	err      error
	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup
}

// NewListener starts accepting on raw and returns the filtering listener.
// The listener owns raw and closes it on Close.
func NewListener(raw net.Listener, config *tls.Config, opts ListenerOptions) *Listener {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Listener{
		raw:     raw,
		config:  config,
		timeout: opts.HandshakeTimeout,
		logger:  opts.Logger,
		hook:    opts.OnHandshake,
		conns:   make(chan *tls.Conn),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go l.acceptLoop()
	return l
}

// Accept waits for the next established TLS connection.
func (l *Listener) Accept() (net.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, l.Err()
	}
}

// Close stops accepting, aborts pending handshakes and closes the raw
// listener. Connections already returned by Accept are not affected.
func (l *Listener) Close() error {
	l.stop(net.ErrClosed)
	return l.raw.Close()
}

// Addr returns the raw listener's address.
func (l *Listener) Addr() net.Addr {
	return l.raw.Addr()
}

// Err returns the terminal error, or nil while the listener is open.
func (l *Listener) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Wait blocks until every pending handshake goroutine has returned.
func (l *Listener) Wait() {
	l.wg.Wait()
}

func (l *Listener) acceptLoop() {
	for {
		raw, err := l.raw.Accept()
		if err != nil {
			if l.stop(&AcceptError{Err: err}) {
				l.logger.Error("tls listener stopped", "addr", l.raw.Addr().String(), "error", err)
			}
			return
		}

		l.wg.Add(1)
		go l.handshake(raw)
	}
}

func (l *Listener) handshake(raw net.Conn) {
	defer l.wg.Done()

	start := time.Now()
	conn := tls.Server(raw, l.config)

	ctx, cancel := context.WithTimeout(l.ctx, l.timeout)
	err := conn.HandshakeContext(ctx)
	cancel()

	result := HandshakeResult{
		RemoteAddr: raw.RemoteAddr(),
		Duration:   time.Since(start),
	}

	if err != nil {
		result.Outcome = Rejected
		result.Err = &HandshakeError{RemoteAddr: raw.RemoteAddr(), Err: err}
		l.report(result)
		l.logger.Info("tls handshake rejected",
			"remote_addr", addrString(raw.RemoteAddr()),
			"duration", result.Duration,
			"error", err,
		)
		_ = raw.Close()
		return
	}

	result.Outcome = Established
	result.Conn = conn
	l.report(result)

	select {
	case l.conns <- conn:
	case <-l.done:
		_ = conn.Close()
	}
}

func (l *Listener) report(r HandshakeResult) {
	if l.hook != nil {
		l.hook(r)
	}
}

// stop records err as the terminal error if none is set yet and reports
// whether it did.
func (l *Listener) stop(err error) bool {
	l.mu.Lock()
	first := l.err == nil
	if first {
		l.err = err
	}
	l.mu.Unlock()

	l.doneOnce.Do(func() {
		close(l.done)
		l.cancel()
	})
	return first
}
