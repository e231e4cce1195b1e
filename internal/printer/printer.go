// This package implements the control core for CTP500 thermal photo
// printers. A Controller owns the Bluetooth session and consumes commands
// from a queue strictly one at a time; everything the core observes is
// published on a fan-out event stream so front-ends can follow along
// without ever touching printer state directly.
package printer

import (
	"image"
	"time"

	"ctprint/internal/escpos"
)

// Connection state of the controller
type State int

const (
	Idle State = iota
	Scanning
	Connected
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Connected:
		return "connected"
	default:
		return "idle"
	}
}

// Renders a block of text into an image ready for the raster codec.
// Implementations live outside the core so fonts stay injectable.
type TextRenderer interface {
	Render(text string, font string, size float64) (image.Image, error)
}

// Tuning knobs for the controller. The zero value of any field falls back to
// the device default, which is the value the CTP500 firmware is known to be
// happy with.
type Options struct {
	// bytes per acknowledged characteristic write
	ChunkSize int
	// how long to scan before giving up
	ScanTimeout time.Duration
	// settle time after the initialize and start-print commands
	CommandDelay time.Duration
	// settle time after the end-print command
	EndDelay time.Duration
	// bytes per second the print engine consumes; used to wait out the
	// raster data before ending the job
	DrainRate int
	// command queue capacity
	QueueSize int
	// per-subscriber event buffer capacity
	EventBuffer int
	// raster codec options applied to every job
	Raster escpos.Options
}

func DefaultOptions() Options {
	return Options{
		ChunkSize:    182,
		ScanTimeout:  10 * time.Second,
		CommandDelay: 500 * time.Millisecond,
		EndDelay:     time.Second,
		DrainRate:    5000,
		QueueSize:    32,
		EventBuffer:  256,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ChunkSize <= 0 {
		o.ChunkSize = d.ChunkSize
	}
	if o.ScanTimeout <= 0 {
		o.ScanTimeout = d.ScanTimeout
	}
	if o.CommandDelay <= 0 {
		o.CommandDelay = d.CommandDelay
	}
	if o.EndDelay <= 0 {
		o.EndDelay = d.EndDelay
	}
	if o.DrainRate <= 0 {
		o.DrainRate = d.DrainRate
	}
	if o.QueueSize <= 0 {
		o.QueueSize = d.QueueSize
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = d.EventBuffer
	}
	return o
}
