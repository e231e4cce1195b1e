package printer

import (
	"time"

	"ctprint/internal/escpos"
)

// Streams one raster job through the write characteristic. The CTP500
// expects: initialize, settle; start print, settle; the raster payload in
// acknowledged chunks; a wait long enough for the engine to burn the
// buffered rows; end print, settle. The first write failure aborts the job.
func (c *Controller) transfer(w Characteristic, p *escpos.Payload) error {
	if err := c.writeChunked(w, escpos.Init()); err != nil {
		return err
	}
	c.events.publish(logEvent("Sent: initialize printer (ESC @)"))
	time.Sleep(c.opts.CommandDelay)

	if err := c.writeChunked(w, escpos.StartPrint()); err != nil {
		return err
	}
	c.events.publish(logEvent("Sent: start print sequence"))
	time.Sleep(c.opts.CommandDelay)

	c.events.publish(logEvent("Sent: image data (%d bytes, %dx%dpx)", len(p.Data), p.Width, p.Height))
	if err := c.writeChunked(w, p.Data); err != nil {
		return err
	}
	time.Sleep(c.printDelay(len(p.Data)))

	if err := c.writeChunked(w, escpos.EndPrint()); err != nil {
		return err
	}
	c.events.publish(logEvent("Sent: end print sequence"))
	time.Sleep(c.opts.EndDelay)

	c.events.publish(logEvent("Print complete"))
	c.events.publish(Event{Kind: EventPrintComplete, Total: len(p.Data)})
	return nil
}

// Writes data to the characteristic in chunks sized for the link. Progress
// events fire after every 10th chunk, and only for payloads large enough
// that progress is worth reporting.
func (c *Controller) writeChunked(w Characteristic, data []byte) error {
	chunkSize := c.opts.ChunkSize
	totalChunks := (len(data) + chunkSize - 1) / chunkSize

	for i := 0; i < totalChunks; i++ {
		end := (i + 1) * chunkSize
		if end > len(data) {
			end = len(data)
		}
		if err := w.Write(data[i*chunkSize : end]); err != nil {
			return err
		}

		if totalChunks > 10 && i%10 == 0 {
			c.events.publish(Event{
				Kind:  EventPrintProgress,
				Sent:  end,
				Total: len(data),
			})
		}
	}

	return nil
}

// The engine burns rows slower than the link delivers them; scale the wait
// with the payload size so the job isn't ended mid-image.
func (c *Controller) printDelay(length int) time.Duration {
	delay := time.Duration(length) * time.Second / time.Duration(c.opts.DrainRate)
	if delay < c.opts.CommandDelay {
		return c.opts.CommandDelay
	}
	return delay
}
