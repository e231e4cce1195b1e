package printer

import (
	"errors"
	"fmt"
	"sync"
)

type mockCharacteristic struct {
	mu     sync.Mutex
	writes [][]byte
	// fail the nth write and every one after it; 0 never fails
	failAt int
	notify func([]byte)
	subErr error
}

func (c *mockCharacteristic) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAt > 0 && len(c.writes)+1 >= c.failAt {
		return errors.New("write refused")
	}
	c.writes = append(c.writes, append([]byte(nil), data...))
	return nil
}

func (c *mockCharacteristic) Subscribe(callback func(data []byte)) error {
	if c.subErr != nil {
		return c.subErr
	}
	c.mu.Lock()
	c.notify = callback
	c.mu.Unlock()
	return nil
}

func (c *mockCharacteristic) pushNotification(d []byte) {
	c.mu.Lock()
	notify := c.notify
	c.mu.Unlock()
	if notify != nil {
		notify(d)
	}
}

func (c *mockCharacteristic) written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.writes...)
}

type mockPeripheral struct {
	mu          sync.Mutex
	writer      *mockCharacteristic
	notifier    *mockCharacteristic
	charErr     error
	disconnects int
}

func (p *mockPeripheral) Characteristics() (Characteristic, Characteristic, error) {
	if p.charErr != nil {
		return nil, nil, p.charErr
	}
	return p.writer, p.notifier, nil
}

func (p *mockPeripheral) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnects++
	return nil
}

func (p *mockPeripheral) disconnectCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disconnects
}

type mockAdapter struct {
	mu         sync.Mutex
	advertised []Advertisement
	enableErr  error
	scanErr    error
	connectErr error
	peripheral *mockPeripheral
	stop       chan struct{}
	connected  []string
}

func newMockAdapter(names ...string) *mockAdapter {
	advs := make([]Advertisement, len(names))
	for i, name := range names {
		advs[i] = Advertisement{Name: name, Address: fmt.Sprintf("AA:BB:CC:DD:EE:%02X", i)}
	}
	return &mockAdapter{
		advertised: advs,
		peripheral: &mockPeripheral{
			writer:   &mockCharacteristic{},
			notifier: &mockCharacteristic{},
		},
	}
}

func (a *mockAdapter) Enable() error {
	return a.enableErr
}

// Replays the advertisements, then blocks like a real scan until StopScan.
// Each call starts a fresh scan cycle.
func (a *mockAdapter) Scan(callback func(Advertisement)) error {
	if a.scanErr != nil {
		return a.scanErr
	}
	a.mu.Lock()
	a.stop = make(chan struct{})
	stop := a.stop
	a.mu.Unlock()

	for _, adv := range a.advertised {
		select {
		case <-stop:
			return nil
		default:
		}
		callback(adv)
	}
	<-stop
	return nil
}

func (a *mockAdapter) StopScan() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		select {
		case <-a.stop:
		default:
			close(a.stop)
		}
	}
	return nil
}

func (a *mockAdapter) Connect(address string) (Peripheral, error) {
	if a.connectErr != nil {
		return nil, a.connectErr
	}
	a.mu.Lock()
	a.connected = append(a.connected, address)
	a.mu.Unlock()
	return a.peripheral, nil
}

func (a *mockAdapter) connectedTo() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.connected...)
}
