package core

// BluetoothMode is the link mode reported by the Bluetooth module
type BluetoothMode uint8

const (
	BluetoothUnknown BluetoothMode = iota
	BluetoothBle                   // paired, low energy
	BluetoothLegacy
)

func (m BluetoothMode) String() string {
	switch m {
	case BluetoothBle:
		return "ble"
	case BluetoothLegacy:
		return "legacy"
	}
	return "unknown"
}

// MaxHostSlot is the number of host slots on this keyboard
const MaxHostSlot = 4

// BluetoothStatus is a snapshot of the Bluetooth-management state
type BluetoothStatus struct {
	// SavedHosts has bit slot-1 set for every host slot with saved credentials
	SavedHosts uint8
	// ConnectedHost is the 1-based slot of the connected host, 0 if none
	ConnectedHost uint8
	Mode          BluetoothMode
}

// HasSavedHost reports whether slot holds saved credentials
func (s BluetoothStatus) HasSavedHost(slot uint8) bool {
	if slot == 0 || slot > 8 {
		return false
	}
	return s.SavedHosts&(1<<(slot-1)) != 0
}

// BluetoothProvider is implemented by the Bluetooth-management collaborator
type BluetoothProvider interface {
	Status() BluetoothStatus
}

// StaticBluetooth is a BluetoothProvider returning a fixed snapshot
type StaticBluetooth BluetoothStatus

func (s StaticBluetooth) Status() BluetoothStatus { return BluetoothStatus(s) }
