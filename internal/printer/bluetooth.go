// This file adapts tinygo.org/x/bluetooth to the Adapter interface consumed
// by the controller. It is built with the assumption that the process talks
// to a single printer at a time.

package printer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tinygo.org/x/bluetooth"
)

var (
	writeCharacteristicUUID  = mustParseUUID(WriteCharacteristicUUID)
	notifyCharacteristicUUID = mustParseUUID(NotifyCharacteristicUUID)
)

func mustParseUUID(s string) bluetooth.UUID {
	u, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

type BluetoothAdapter struct {
	adapter *bluetooth.Adapter

	mu sync.Mutex
	// addresses seen while scanning, keyed by their display string, since
	// the platform address type can't be rebuilt from a string portably
	found map[string]bluetooth.Address
}

var _ Adapter = (*BluetoothAdapter)(nil)

func NewBluetoothAdapter() *BluetoothAdapter {
	return &BluetoothAdapter{
		adapter: bluetooth.DefaultAdapter,
		found:   make(map[string]bluetooth.Address),
	}
}

func (a *BluetoothAdapter) Enable() error {
	return a.adapter.Enable()
}

func (a *BluetoothAdapter) Scan(callback func(Advertisement)) error {
	return a.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		address := result.Address.String()

		a.mu.Lock()
		a.found[address] = result.Address
		a.mu.Unlock()

		callback(Advertisement{
			Name:    result.LocalName(),
			Address: address,
		})
	})
}

func (a *BluetoothAdapter) StopScan() error {
	return a.adapter.StopScan()
}

func (a *BluetoothAdapter) Connect(address string) (Peripheral, error) {
	a.mu.Lock()
	addr, ok := a.found[address]
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("No scanned device with address %s", address)
	}

	slog.Debug("Connecting to device...", "address", address)
	device, err := a.adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, err
	}

	return &bluetoothPeripheral{device: device}, nil
}

type bluetoothPeripheral struct {
	device bluetooth.Device
}

func (p *bluetoothPeripheral) Characteristics() (Characteristic, Characteristic, error) {
	slog.Debug("Discovering services...")
	services, err := p.device.DiscoverServices(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to discover services:\n%w", err)
	}

	slog.Debug("Discovering characteristics...")
	var writer, notifier *bluetooth.DeviceCharacteristic
	for _, service := range services {
		characteristics, err := service.DiscoverCharacteristics(nil)
		if err != nil {
			return nil, nil, fmt.Errorf("Failed to discover characteristics:\n%w", err)
		}
		for i := range characteristics {
			switch characteristics[i].UUID() {
			case writeCharacteristicUUID:
				writer = &characteristics[i]
			case notifyCharacteristicUUID:
				notifier = &characteristics[i]
			}
		}
	}

	if writer == nil {
		return nil, nil, errors.New("Write characteristic not found")
	}
	if notifier == nil {
		return nil, nil, errors.New("Notify characteristic not found")
	}

	return &bluetoothCharacteristic{char: *writer}, &bluetoothCharacteristic{char: *notifier}, nil
}

func (p *bluetoothPeripheral) Disconnect() error {
	return p.device.Disconnect()
}

type bluetoothCharacteristic struct {
	char bluetooth.DeviceCharacteristic
}

func (c *bluetoothCharacteristic) Write(data []byte) error {
	_, err := c.char.Write(data)
	return err
}

func (c *bluetoothCharacteristic) Subscribe(callback func(data []byte)) error {
	return c.char.EnableNotifications(callback)
}
