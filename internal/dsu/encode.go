package dsu

import (
	"encoding/binary"
	"math"
)

func float32bits(p []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(p))
}

func putFloat32(p []byte, v float32) {
	binary.LittleEndian.PutUint32(p, math.Float32bits(v))
}

// newPacket allocates a packet with the header fields that do not depend on
// the payload already in place. finalize fills in length and CRC once the
// payload has been written.
func newPacket(magic [4]byte, senderID uint32, typ MessageType, payloadSize int) []byte {
	b := make([]byte, HeaderSize+payloadSize)
	copy(b[0:4], magic[:])
	binary.LittleEndian.PutUint16(b[4:6], ProtocolVersion)
	binary.LittleEndian.PutUint32(b[12:16], senderID)
	binary.LittleEndian.PutUint32(b[16:20], uint32(typ))
	return b
}

func finalize(b []byte) []byte {
	binary.LittleEndian.PutUint16(b[6:8], uint16(len(b)-HeaderSize+4))
	binary.LittleEndian.PutUint32(b[8:12], checksum(b))
	return b
}

// EncodePortInfoRequest builds a client PortInfo query for the given pad
// slots. At most four slots are carried; extras are ignored.
func EncodePortInfoRequest(clientID uint32, slots ...uint8) []byte {
	b := newPacket(magicClient, clientID, MessageTypePortInfo, portInfoRequestPayloadSize)
	p := b[HeaderSize:]
	n := len(slots)
	if n > 4 {
		n = 4
	}
	binary.LittleEndian.PutUint32(p[0:4], uint32(n))
	copy(p[4:8], slots[:n])
	return finalize(b)
}

// EncodePadDataRequest builds a client PadData subscription.
func EncodePadDataRequest(clientID uint32, flags RegistrationFlags, slot uint8, mac [6]byte) []byte {
	b := newPacket(magicClient, clientID, MessageTypePadData, padDataRequestPayloadSize)
	p := b[HeaderSize:]
	p[0] = uint8(flags)
	p[1] = slot
	copy(p[2:8], mac[:])
	return finalize(b)
}

// EncodeVersionResponse builds a server Version packet.
func EncodeVersionResponse(serverID uint32, version uint16) []byte {
	b := newPacket(magicServer, serverID, MessageTypeVersion, versionPayloadSize)
	binary.LittleEndian.PutUint16(b[HeaderSize:HeaderSize+2], version)
	return finalize(b)
}

func encodePortInfoBlock(p []byte, info PortInfoResponse) {
	p[0] = info.Slot
	p[1] = uint8(info.State)
	p[2] = uint8(info.Model)
	p[3] = uint8(info.Connection)
	copy(p[4:10], info.MAC[:])
	p[10] = uint8(info.Battery)
	p[11] = info.Active
}

func encodeTouchPoint(p []byte, tp TouchPoint) {
	p[0] = tp.Active
	p[1] = tp.ID
	binary.LittleEndian.PutUint16(p[2:4], tp.X)
	binary.LittleEndian.PutUint16(p[4:6], tp.Y)
}

// EncodePortInfoResponse builds a server PortInfo packet for one slot.
func EncodePortInfoResponse(serverID uint32, info PortInfoResponse) []byte {
	b := newPacket(magicServer, serverID, MessageTypePortInfo, portInfoPayloadSize)
	encodePortInfoBlock(b[HeaderSize:], info)
	return finalize(b)
}

// EncodePadDataResponse builds a server PadData packet carrying one full
// input sample.
func EncodePadDataResponse(serverID uint32, data PadDataResponse) []byte {
	b := newPacket(magicServer, serverID, MessageTypePadData, padDataPayloadSize)
	p := b[HeaderSize:]

	encodePortInfoBlock(p[0:12], data.Info)
	binary.LittleEndian.PutUint32(p[12:16], data.PacketCounter)
	binary.LittleEndian.PutUint16(p[16:18], data.Buttons)
	p[18] = data.Home
	p[19] = data.TouchButton
	p[20] = data.LeftStickX
	p[21] = data.LeftStickY
	p[22] = data.RightStickX
	p[23] = data.RightStickY
	copy(p[24:28], data.AnalogDPad[:])
	copy(p[28:32], data.AnalogFace[:])
	copy(p[32:36], data.AnalogShoulder[:])
	encodeTouchPoint(p[36:42], data.Touch1)
	encodeTouchPoint(p[42:48], data.Touch2)
	binary.LittleEndian.PutUint64(p[48:56], data.MotionTimestamp)
	putFloat32(p[56:60], data.AccelX)
	putFloat32(p[60:64], data.AccelY)
	putFloat32(p[64:68], data.AccelZ)
	putFloat32(p[68:72], data.GyroPitch)
	putFloat32(p[72:76], data.GyroYaw)
	putFloat32(p[76:80], data.GyroRoll)
	return finalize(b)
}
