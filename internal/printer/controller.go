package printer

import (
	"log/slog"
	"regexp"
	"sync"
	"time"

	"ctprint/internal/escpos"
)

// Compatible devices announce themselves as e.g. "S Pink Printer"; match
// loosely since some firmware revisions pad the name with extra spaces or
// change case.
var printerNamePattern = regexp.MustCompile(`(?i)S\s+(Pink|Blue|White|Black)\s+Printer`)

// an established connection to a printer
type session struct {
	device Peripheral
	writer Characteristic
}

// Controller drives a single printer over a single Bluetooth connection.
// All peripheral access happens on the Run goroutine; other goroutines talk
// to it through Submit and observe it through Subscribe.
type Controller struct {
	adapter  Adapter
	renderer TextRenderer
	opts     Options

	commands chan Command
	events   *eventHub
	done     chan struct{}
	closing  sync.Once

	// owned by the Run goroutine
	state   State
	session *session
	enabled bool
}

func NewController(adapter Adapter, renderer TextRenderer, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		adapter:  adapter,
		renderer: renderer,
		opts:     opts,
		commands: make(chan Command, opts.QueueSize),
		events:   newEventHub(opts.EventBuffer),
		done:     make(chan struct{}),
	}
}

// Submit queues a command without blocking. It reports false when the queue
// is full or the controller is closing; a refused command is simply gone,
// the caller decides whether to retry.
func (c *Controller) Submit(cmd Command) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.commands <- cmd:
		return true
	default:
		return false
	}
}

// Subscribe attaches an observer to the event stream. The returned cancel
// func detaches it; the channel closes on cancel or when the controller
// shuts down.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	return c.events.subscribe()
}

// Close stops the controller. Run finishes the commands already queued and
// then returns.
func (c *Controller) Close() {
	c.closing.Do(func() {
		close(c.done)
	})
}

// Run consumes the command queue until Close is called. It only ever
// returns on shutdown: command failures surface as events and the loop
// moves on to the next command.
func (c *Controller) Run() {
	defer c.events.close()

	for {
		select {
		case cmd := <-c.commands:
			c.dispatch(cmd)
		case <-c.done:
			for {
				select {
				case cmd := <-c.commands:
					c.dispatch(cmd)
				default:
					return
				}
			}
		}
	}
}

func (c *Controller) dispatch(cmd Command) {
	switch cmd.Kind {
	case CommandScanAndConnect:
		c.scanAndConnect()
	case CommandDisconnect:
		c.disconnect()
	case CommandPrintImage:
		if c.state != Connected {
			c.events.publish(logEvent("Print aborted: not connected"))
			return
		}
		c.printPayload(escpos.EncodeWithOptions(cmd.Image, c.opts.Raster))
	case CommandPrintText:
		if c.state != Connected {
			c.events.publish(logEvent("Print aborted: not connected"))
			return
		}
		i, err := c.renderer.Render(cmd.Text, cmd.Font, cmd.Size)
		if err != nil {
			slog.Error("Couldn't render text for printing", "err", err)
			c.events.publish(errorEvent("Text render error: %v", err))
			return
		}
		c.printPayload(escpos.EncodeWithOptions(i, c.opts.Raster))
	}
}

func (c *Controller) scanAndConnect() {
	// at most one session at a time; a re-scan drops the current one
	if c.session != nil {
		c.session.device.Disconnect()
		c.session = nil
	}

	c.state = Scanning
	c.events.publish(Event{Kind: EventScanStarted})
	c.events.publish(logEvent("Scanning for compatible printers (%v)...", c.opts.ScanTimeout))

	adv, err := c.findPrinter()
	if err != nil {
		slog.Error("Failed to scan for devices:", "err", err)
		c.failConnect(logEvent("Scan error: %v", err))
		return
	}
	if adv == nil {
		c.failConnect(logEvent("No compatible printer found nearby"))
		return
	}

	c.events.publish(logEvent("Found: %s", adv.Name))

	if err := c.connect(*adv); err != nil {
		slog.Error("Couldn't connect to printer", "err", err)
		c.failConnect(logEvent("Scan error: %v", err))
		return
	}

	c.state = Connected
	c.events.publish(logEvent("Connected (chunk size: %d bytes)", c.opts.ChunkSize))
	c.events.publish(Event{Kind: EventConnected})
}

// Connection attempts that fail never raise an error event: the front-end
// learns the reason from the log line and the Disconnected event tells it
// the controller is idle again.
func (c *Controller) failConnect(reason Event) {
	c.events.publish(reason)
	c.events.publish(Event{Kind: EventDisconnected})
	c.state = Idle
}

// Scans until a device with a compatible name shows up or the deadline
// passes. A nil Advertisement with a nil error means the scan timed out.
func (c *Controller) findPrinter() (*Advertisement, error) {
	if !c.enabled {
		if err := c.adapter.Enable(); err != nil {
			return nil, err
		}
		c.enabled = true
	}

	devices := make(chan Advertisement, 1)
	scanErr := make(chan error, 1)

	go func() {
		err := c.adapter.Scan(func(adv Advertisement) {
			if printerNamePattern.MatchString(adv.Name) {
				slog.Info("Found device:", "deviceName", adv.Name)
				select {
				case devices <- adv:
					c.adapter.StopScan()
				default:
				}
			}
		})
		if err != nil {
			scanErr <- err
		}
	}()

	select {
	case adv := <-devices:
		return &adv, nil
	case err := <-scanErr:
		return nil, err
	case <-time.After(c.opts.ScanTimeout):
		c.adapter.StopScan()
		return nil, nil
	}
}

func (c *Controller) connect(adv Advertisement) error {
	c.events.publish(logEvent("Connecting to %s...", adv.Address))

	device, err := c.adapter.Connect(adv.Address)
	if err != nil {
		return err
	}

	writer, notifier, err := device.Characteristics()
	if err != nil {
		device.Disconnect()
		return err
	}

	if err := notifier.Subscribe(c.handleNotification); err != nil {
		device.Disconnect()
		return err
	}

	// the reply comes back through the notify characteristic; losing it
	// only costs the battery readout
	if err := writer.Write(escpos.RequestStatus()); err != nil {
		slog.Debug("Couldn't request printer status", "err", err)
	}

	c.session = &session{device: device, writer: writer}
	return nil
}

// runs on the platform's notify goroutine
func (c *Controller) handleNotification(d []byte) {
	text := decodeStatus(d)
	slog.Debug("Received printer status", "data", text)
	c.events.publish(logEvent("Printer status: %s", text))

	if level, ok := parseBatteryLevel(d); ok {
		c.events.publish(Event{Kind: EventBatteryLevel, Battery: level})
	}
}

// Disconnected is always emitted, session or not, so front-ends can treat
// it as the definitive "idle now" signal.
func (c *Controller) disconnect() {
	if c.session != nil {
		c.events.publish(logEvent("Disconnecting..."))
		if err := c.session.device.Disconnect(); err != nil {
			c.events.publish(logEvent("Disconnect error: %v", err))
		} else {
			c.events.publish(logEvent("Disconnected"))
		}
		c.session = nil
	}

	c.state = Idle
	c.events.publish(Event{Kind: EventDisconnected})
}

func (c *Controller) printPayload(p *escpos.Payload) {
	if err := c.transfer(c.session.writer, p); err != nil {
		slog.Error("Couldn't write print data", "err", err)
		c.events.publish(errorEvent("Print error: %v", err))
	}
}
