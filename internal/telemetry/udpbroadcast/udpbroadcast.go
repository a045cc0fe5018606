// Package udpbroadcast periodically marshals the current firing solution
// to JSON and ships it over UDP to a remote display.
package udpbroadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/koenig-jacob/DOPE/internal/engine"
)

type udpConn interface {
	Write(p []byte) (int, error)
	Close() error
}

type resolveFunc func(network, address string) (*net.UDPAddr, error)
type dialFunc func(network string, laddr, raddr *net.UDPAddr) (udpConn, error)

// Broadcaster sends payloads to one fixed UDP destination.
type Broadcaster struct {
	dest string
	conn udpConn
}

// NewBroadcaster resolves dest and opens a UDP socket to it.
func NewBroadcaster(dest string) (*Broadcaster, error) {
	return newBroadcaster(dest, net.ResolveUDPAddr, func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		return net.DialUDP(network, laddr, raddr)
	})
}

func newBroadcaster(dest string, resolve resolveFunc, dial dialFunc) (*Broadcaster, error) {
	addr, err := resolve("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("udpbroadcast: resolve dest: %w", err)
	}
	conn, err := dial("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("udpbroadcast: dial: %w", err)
	}
	return &Broadcaster{dest: dest, conn: conn}, nil
}

// Send writes payload to the destination. An empty payload is a no-op.
func (b *Broadcaster) Send(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	_, err := b.conn.Write(payload)
	return err
}

// Close closes the underlying socket.
func (b *Broadcaster) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}

// wireSolution is the JSON shape published over the wire: the firing
// solution plus the mode's name, for a display that doesn't want to know
// the Mode numbering. Fault and diag flags stay raw bitmasks.
type wireSolution struct {
	engine.FiringSolution
	ModeName string `json:"mode_name"`
}

// Publisher periodically pulls the current solution from a source function
// and broadcasts it as JSON, following the teacher's Service-style
// Start(ctx)/Close() async adapter shape.
type Publisher struct {
	bc       *Broadcaster
	interval time.Duration
	source   func() engine.FiringSolution

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPublisher returns a Publisher that broadcasts source()'s result to bc
// every interval.
func NewPublisher(bc *Broadcaster, interval time.Duration, source func() engine.FiringSolution) *Publisher {
	return &Publisher{bc: bc, interval: interval, source: source}
}

// Start begins the periodic publish loop. Calling Start on an already-
// started Publisher is a no-op.
func (p *Publisher) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	childCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-childCtx.Done():
				return
			case <-ticker.C:
				p.publishOnce()
			}
		}
	}()
}

func (p *Publisher) publishOnce() {
	sol := p.source()
	payload, err := json.Marshal(wireSolution{FiringSolution: sol, ModeName: sol.Mode.String()})
	if err != nil {
		return
	}
	_ = p.bc.Send(payload)
}

// Close stops the publish loop and waits for it to exit.
func (p *Publisher) Close() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}
