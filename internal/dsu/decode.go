package dsu

import (
	"encoding/binary"
	"hash/crc32"
	"io"
)

// Validate inspects the header of a packet received from a server and returns
// its event type. It reports false for anything that is not a well-formed
// response: short packets, wrong magic or protocol version, a declared length
// inconsistent with the received length, a CRC mismatch, or an unknown event
// type. It never modifies the buffer.
func Validate(b []byte) (MessageType, bool) {
	return validate(b, magicServer)
}

// ValidateRequest is the server-side counterpart of Validate: it accepts
// client-to-server packets ("DSUC" magic) and is otherwise identical.
func ValidateRequest(b []byte) (MessageType, bool) {
	return validate(b, magicClient)
}

func validate(b []byte, magic [4]byte) (MessageType, bool) {
	if len(b) < HeaderSize {
		return 0, false
	}
	if b[0] != magic[0] || b[1] != magic[1] || b[2] != magic[2] || b[3] != magic[3] {
		return 0, false
	}
	if binary.LittleEndian.Uint16(b[4:6]) != ProtocolVersion {
		return 0, false
	}
	// The declared length counts from the event type field, so a consistent
	// packet is exactly 16 bytes longer than it declares.
	declared := int(binary.LittleEndian.Uint16(b[6:8]))
	if declared+HeaderSize-4 != len(b) {
		return 0, false
	}
	if checksum(b) != binary.LittleEndian.Uint32(b[8:12]) {
		return 0, false
	}
	switch typ := MessageType(binary.LittleEndian.Uint32(b[16:20])); typ {
	case MessageTypeVersion, MessageTypePortInfo, MessageTypePadData:
		return typ, true
	default:
		return 0, false
	}
}

// checksum computes the header CRC: IEEE CRC32 over the whole packet with the
// CRC field treated as zero.
func checksum(b []byte) uint32 {
	crc := crc32.NewIEEE()
	crc.Write(b[:8])
	crc.Write([]byte{0, 0, 0, 0})
	crc.Write(b[12:])
	return crc.Sum32()
}

// DecodeVersion projects a validated Version packet onto its payload struct.
func DecodeVersion(b []byte) (VersionResponse, error) {
	if len(b) < HeaderSize+versionPayloadSize {
		return VersionResponse{}, io.ErrUnexpectedEOF
	}
	p := b[HeaderSize:]
	return VersionResponse{Version: binary.LittleEndian.Uint16(p[0:2])}, nil
}

// DecodePortInfo projects a validated PortInfo packet onto its payload struct.
func DecodePortInfo(b []byte) (PortInfoResponse, error) {
	if len(b) < HeaderSize+portInfoPayloadSize {
		return PortInfoResponse{}, io.ErrUnexpectedEOF
	}
	return decodePortInfoBlock(b[HeaderSize:]), nil
}

func decodePortInfoBlock(p []byte) PortInfoResponse {
	info := PortInfoResponse{
		Slot:       p[0],
		State:      SlotState(p[1]),
		Model:      Model(p[2]),
		Connection: ConnectionType(p[3]),
		Battery:    BatteryStatus(p[10]),
		Active:     p[11],
	}
	copy(info.MAC[:], p[4:10])
	return info
}

func decodeTouchPoint(p []byte) TouchPoint {
	return TouchPoint{
		Active: p[0],
		ID:     p[1],
		X:      binary.LittleEndian.Uint16(p[2:4]),
		Y:      binary.LittleEndian.Uint16(p[4:6]),
	}
}

// DecodePadData projects a validated PadData packet onto its payload struct.
func DecodePadData(b []byte) (PadDataResponse, error) {
	if len(b) < HeaderSize+padDataPayloadSize {
		return PadDataResponse{}, io.ErrUnexpectedEOF
	}
	p := b[HeaderSize:]

	data := PadDataResponse{
		Info:          decodePortInfoBlock(p[0:12]),
		PacketCounter: binary.LittleEndian.Uint32(p[12:16]),
		Buttons:       binary.LittleEndian.Uint16(p[16:18]),
		Home:          p[18],
		TouchButton:   p[19],
		LeftStickX:    p[20],
		LeftStickY:    p[21],
		RightStickX:   p[22],
		RightStickY:   p[23],
		Touch1:        decodeTouchPoint(p[36:42]),
		Touch2:        decodeTouchPoint(p[42:48]),

		MotionTimestamp: binary.LittleEndian.Uint64(p[48:56]),

		AccelX: float32bits(p[56:60]),
		AccelY: float32bits(p[60:64]),
		AccelZ: float32bits(p[64:68]),

		GyroPitch: float32bits(p[68:72]),
		GyroYaw:   float32bits(p[72:76]),
		GyroRoll:  float32bits(p[76:80]),
	}
	copy(data.AnalogDPad[:], p[24:28])
	copy(data.AnalogFace[:], p[28:32])
	copy(data.AnalogShoulder[:], p[32:36])
	return data, nil
}

// DecodePortInfoRequest projects a validated client PortInfo request onto its
// payload struct.
func DecodePortInfoRequest(b []byte) (PortInfoRequest, error) {
	if len(b) < HeaderSize+portInfoRequestPayloadSize {
		return PortInfoRequest{}, io.ErrUnexpectedEOF
	}
	p := b[HeaderSize:]
	req := PortInfoRequest{PadCount: int32(binary.LittleEndian.Uint32(p[0:4]))}
	copy(req.Slots[:], p[4:8])
	return req, nil
}

// DecodePadDataRequest projects a validated client PadData subscription onto
// its payload struct.
func DecodePadDataRequest(b []byte) (PadDataRequest, error) {
	if len(b) < HeaderSize+padDataRequestPayloadSize {
		return PadDataRequest{}, io.ErrUnexpectedEOF
	}
	p := b[HeaderSize:]
	req := PadDataRequest{
		Flags: RegistrationFlags(p[0]),
		Slot:  p[1],
	}
	copy(req.MAC[:], p[2:8])
	return req, nil
}
