// Package dsu implements the cemuhookudp ("DSU") controller telemetry wire
// format, version 1001.
//
// Every packet starts with a 20-byte little-endian header:
//
//	Offset  Size  Field
//	0       4     magic ("DSUS" server to client, "DSUC" client to server)
//	4       2     protocol version (1001)
//	6       2     payload length, counted from the event type field
//	8       4     CRC32 (IEEE) of the whole packet with this field zeroed
//	12      4     sender id
//	16      4     event type
//
// Three event types exist in both directions: Version, PortInfo and PadData.
// Responses carry fixed-size payloads directly after the header; the largest
// packet on the wire is the 100-byte PadData response.
package dsu

// MessageType is the event type tag carried at the tail of the header.
type MessageType uint32

const (
	MessageTypeVersion  MessageType = 0x100000
	MessageTypePortInfo MessageType = 0x100001
	MessageTypePadData  MessageType = 0x100002
)

const (
	// ProtocolVersion is the only protocol revision this package speaks.
	ProtocolVersion = 1001

	// HeaderSize covers the common header including the event type field.
	HeaderSize = 20

	// MaxPacketSize is the size of the largest defined packet, the PadData
	// response. Receive buffers sized to this hold any valid packet.
	MaxPacketSize = HeaderSize + padDataPayloadSize
)

var (
	magicServer = [4]byte{'D', 'S', 'U', 'S'}
	magicClient = [4]byte{'D', 'S', 'U', 'C'}
)

// Payload sizes per event type, excluding the header.
const (
	versionPayloadSize  = 4
	portInfoPayloadSize = 12
	padDataPayloadSize  = 80

	portInfoRequestPayloadSize = 8
	padDataRequestPayloadSize  = 8
)

// SlotState reports whether a pad slot currently has a device attached.
type SlotState uint8

const (
	SlotStateDisconnected SlotState = 0
	SlotStateReserved     SlotState = 1
	SlotStateConnected    SlotState = 2
)

// Model identifies the kind of device occupying a slot.
type Model uint8

const (
	ModelNone    Model = 0
	ModelPartial Model = 1
	ModelFull    Model = 2
	ModelGeneric Model = 3
)

// ConnectionType reports how the device is attached to the server.
type ConnectionType uint8

const (
	ConnectionNone      ConnectionType = 0
	ConnectionUSB       ConnectionType = 1
	ConnectionBluetooth ConnectionType = 2
)

// BatteryStatus is the coarse battery level reported for a slot.
type BatteryStatus uint8

const (
	BatteryNone     BatteryStatus = 0x00
	BatteryDying    BatteryStatus = 0x01
	BatteryLow      BatteryStatus = 0x02
	BatteryMedium   BatteryStatus = 0x03
	BatteryHigh     BatteryStatus = 0x04
	BatteryFull     BatteryStatus = 0x05
	BatteryCharging BatteryStatus = 0xEE
	BatteryCharged  BatteryStatus = 0xEF
)

// RegistrationFlags select how a PadData subscription addresses pads.
type RegistrationFlags uint8

const (
	// RegisterAll subscribes to every pad the server exposes.
	RegisterAll RegistrationFlags = 0
	// RegisterBySlot subscribes to the single pad in the named slot.
	RegisterBySlot RegistrationFlags = 1 << 0
	// RegisterByMAC subscribes to the pad with the given hardware address.
	RegisterByMAC RegistrationFlags = 1 << 1
)

// VersionResponse is the payload of a Version event from the server.
type VersionResponse struct {
	Version uint16
}

// PortInfoResponse describes one pad slot. It is also the leading block of
// every PadData response.
type PortInfoResponse struct {
	Slot       uint8
	State      SlotState
	Model      Model
	Connection ConnectionType
	MAC        [6]byte
	Battery    BatteryStatus
	Active     uint8
}

// TouchPoint is one touch sample on the pad's touch surface. Coordinates are
// raw panel units; Active is non-zero while the point is pressed.
type TouchPoint struct {
	Active uint8
	ID     uint8
	X      uint16
	Y      uint16
}

// PadDataResponse is the payload of a PadData event: one full input sample
// for a single pad.
type PadDataResponse struct {
	Info          PortInfoResponse
	PacketCounter uint32

	Buttons     uint16
	Home        uint8
	TouchButton uint8

	LeftStickX  uint8
	LeftStickY  uint8
	RightStickX uint8
	RightStickY uint8

	// Analog pressure values: d-pad left/down/right/up, then the four face
	// buttons, then R1/L1/R2/L2.
	AnalogDPad     [4]uint8
	AnalogFace     [4]uint8
	AnalogShoulder [4]uint8

	Touch1 TouchPoint
	Touch2 TouchPoint

	// MotionTimestamp is the server-side sample time in microseconds.
	MotionTimestamp uint64

	AccelX float32
	AccelY float32
	AccelZ float32

	GyroPitch float32
	GyroYaw   float32
	GyroRoll  float32
}

// PortInfoRequest asks the server to describe up to four pad slots.
type PortInfoRequest struct {
	PadCount int32
	Slots    [4]uint8
}

// PadDataRequest subscribes the sender to PadData events.
type PadDataRequest struct {
	Flags RegistrationFlags
	Slot  uint8
	MAC   [6]byte
}
