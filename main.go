package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"ctprint/internal/config"
	"ctprint/internal/history"
	"ctprint/internal/printer"
	"ctprint/internal/render"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/ctprint/config.yaml)")
	imagePath := flag.String("image", "", "path of an image to print")
	text := flag.String("text", "", "text to print")
	fontName := flag.String("font", "", "font label for -text (default: goregular)")
	fontSize := flag.Float64("size", 0, "font size in points for -text (default: from config)")
	photo := flag.Bool("photo", false, "dither instead of thresholding, for photographs")
	jobs := flag.Int("jobs", 0, "list the last N print jobs and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("Couldn't load config:", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config:", "err", err)
		os.Exit(1)
	}
	slog.SetLogLoggerLevel(config.ParseLogLevel(cfg.LogLevel))

	if *jobs > 0 {
		if err := listJobs(cfg, *jobs); err != nil {
			slog.Error("Couldn't list print jobs:", "err", err)
			os.Exit(1)
		}
		return
	}

	if (*imagePath == "") == (*text == "") {
		fmt.Fprintln(os.Stderr, "Exactly one of -image and -text is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg, *imagePath, *text, *fontName, *fontSize, *photo); err != nil {
		slog.Error("Print failed:", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, imagePath string, text string, fontName string, fontSize float64, photo bool) error {
	var sources []render.FontSource
	for _, f := range cfg.Render.Fonts {
		sources = append(sources, render.FontSource{Label: f.Label, Path: f.Path, Builtin: f.Builtin})
	}
	renderer, err := render.New(sources)
	if err != nil {
		return fmt.Errorf("Couldn't load fonts:\n%w", err)
	}

	if fontSize == 0 {
		fontSize = cfg.Render.FontSize
	}

	job := history.Job{StartedAt: time.Now()}
	var img image.Image
	if imagePath != "" {
		if img, err = loadImage(imagePath); err != nil {
			return err
		}
		job.Kind = history.KindImage
		job.Source = filepath.Base(imagePath)
	} else {
		job.Kind = history.KindText
		job.Source = text
	}

	opts := printer.DefaultOptions()
	opts.Raster.Dither = photo
	controller := printer.NewController(printer.NewBluetoothAdapter(), renderer, opts)
	events, cancel := controller.Subscribe()
	defer cancel()
	go controller.Run()
	defer controller.Close()

	// Ctrl-C must release the peripheral, not leave it connected
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	controller.Submit(printer.ScanAndConnect())
	e, err := driveUntil(events, sigCh, time.Minute, printer.EventConnected, printer.EventDisconnected)
	if errors.Is(err, errInterrupted) {
		return shutdown(controller, events, sigCh)
	}
	if err != nil {
		return err
	}
	if e.Kind == printer.EventDisconnected {
		return errors.New("No printer connected")
	}

	if imagePath != "" {
		controller.Submit(printer.PrintImage(img))
	} else {
		controller.Submit(printer.PrintText(text, fontName, fontSize))
	}
	e, err = driveUntil(events, sigCh, 5*time.Minute, printer.EventPrintComplete, printer.EventError)
	if errors.Is(err, errInterrupted) {
		return shutdown(controller, events, sigCh)
	}
	if err != nil {
		return err
	}

	job.FinishedAt = time.Now()
	if e.Kind == printer.EventPrintComplete {
		job.Status = history.StatusComplete
		job.Bytes = e.Total
	} else {
		job.Status = history.StatusError
		job.Detail = e.Message
	}
	recordJob(cfg, &job)

	controller.Submit(printer.Disconnect())
	if _, err := driveUntil(events, sigCh, 30*time.Second, printer.EventDisconnected); err != nil {
		slog.Warn("Couldn't disconnect cleanly:", "err", err)
	}

	if job.Status == history.StatusError {
		return errors.New(job.Detail)
	}
	return nil
}

var errInterrupted = errors.New("Interrupted")

// shutdown releases the peripheral after an interrupt. The command loop
// finishes any in-flight write first, so the wait is bounded rather than
// open-ended; a second signal abandons it.
func shutdown(c *printer.Controller, events <-chan printer.Event, signals <-chan os.Signal) error {
	c.Submit(printer.Disconnect())
	_, err := driveUntil(events, signals, 30*time.Second, printer.EventDisconnected)
	if err != nil && !errors.Is(err, errInterrupted) {
		slog.Warn("Couldn't disconnect cleanly:", "err", err)
	}
	return errInterrupted
}

// driveUntil prints the event stream until one of the terminal kinds
// arrives. The deadline guards against a wedged link leaving the
// one-shot run hanging forever; a signal ends the wait with
// errInterrupted so the caller can release the printer.
func driveUntil(events <-chan printer.Event, signals <-chan os.Signal, patience time.Duration, terminals ...printer.EventKind) (printer.Event, error) {
	deadline := time.After(patience)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return printer.Event{}, errors.New("Event stream closed unexpectedly")
			}
			printEvent(e)
			if slices.Contains(terminals, e.Kind) {
				return e, nil
			}
		case sig := <-signals:
			slog.Info("Received signal, shutting down:", "signal", sig)
			return printer.Event{}, errInterrupted
		case <-deadline:
			return printer.Event{}, errors.New("Timed out waiting for the printer")
		}
	}
}

func printEvent(e printer.Event) {
	stamp := time.Now().Format("15:04:05")
	switch e.Kind {
	case printer.EventLog:
		fmt.Printf("[%s] %s\n", stamp, e.Message)
	case printer.EventBatteryLevel:
		fmt.Printf("[%s] Battery: %d%%\n", stamp, e.Battery)
	case printer.EventPrintProgress:
		fmt.Printf("[%s] Progress: %d/%d bytes\n", stamp, e.Sent, e.Total)
	case printer.EventError:
		fmt.Printf("[%s] ERROR: %s\n", stamp, e.Message)
	}
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Couldn't open image:\n%w", err)
	}
	defer f.Close()

	i, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("Couldn't decode image %s:\n%w", filepath.Base(path), err)
	}
	return i, nil
}

// recordJob appends to the history database. Failures are logged rather
// than returned; a missing history row shouldn't fail a print that
// already happened.
func recordJob(cfg *config.Config, j *history.Job) {
	if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0755); err != nil {
		slog.Warn("Couldn't create history directory:", "err", err)
		return
	}
	r, err := history.Open(cfg.HistoryPath)
	if err != nil {
		slog.Warn("Couldn't open history database:", "err", err)
		return
	}
	defer r.Close()
	if err := r.Record(j); err != nil {
		slog.Warn("Couldn't record print job:", "err", err)
	}
}

func listJobs(cfg *config.Config, n int) error {
	r, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer r.Close()

	jobs, err := r.Recent(n)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Println("No print jobs recorded yet")
		return nil
	}

	for _, j := range jobs {
		line := fmt.Sprintf("%s  %-5s  %-8s  %6d bytes  %s",
			j.FinishedAt.Local().Format("2006-01-02 15:04:05"), j.Kind, j.Status, j.Bytes, j.Source)
		if j.Status == history.StatusError && j.Detail != "" {
			line += "  (" + j.Detail + ")"
		}
		fmt.Println(line)
	}
	return nil
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path. With no config file at all, a default one is
// written there for the next run to pick up.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		return config.Load(defaultPath)
	}

	if created, err := config.WriteDefault(); err != nil {
		slog.Warn("Couldn't write default config:", "err", err)
	} else if created != "" {
		slog.Info("Created default config:", "path", created)
	}
	return config.Default(), nil
}
