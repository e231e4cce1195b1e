package printer

// GATT characteristics the CTP500 exposes on its vendor service
const (
	WriteCharacteristicUUID  = "49535343-8841-43f4-a8d4-ecbe34729bb3"
	NotifyCharacteristicUUID = "49535343-1e4d-4bd9-ba61-23c647249616"
)

// A nearby device, snapshotted from a scan advertisement
type Advertisement struct {
	Name    string
	Address string
}

// The platform Bluetooth stack. Scan blocks, invoking the callback for each
// advertisement, until StopScan is called; implementations must tolerate
// StopScan arriving from another goroutine.
type Adapter interface {
	Enable() error
	Scan(callback func(Advertisement)) error
	StopScan() error
	Connect(address string) (Peripheral, error)
}

// A connected device
type Peripheral interface {
	// Discovers the device's services and returns the characteristics
	// matching the write and notify UUIDs above. Both must be present.
	Characteristics() (write Characteristic, notify Characteristic, err error)
	Disconnect() error
}

type Characteristic interface {
	// Write pushes data to the device in a single acknowledged write
	Write(data []byte) error
	// Subscribe registers a callback invoked for every notification the
	// device pushes. The callback runs on the platform's notify goroutine.
	Subscribe(callback func(data []byte)) error
}
