package dsu

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePadData() PadDataResponse {
	return PadDataResponse{
		Info: PortInfoResponse{
			Slot:       0,
			State:      SlotStateConnected,
			Model:      ModelFull,
			Connection: ConnectionBluetooth,
			MAC:        [6]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01},
			Battery:    BatteryHigh,
			Active:     1,
		},
		PacketCounter:   42,
		Buttons:         0x0102,
		Home:            1,
		LeftStickX:      127,
		LeftStickY:      128,
		RightStickX:     0,
		RightStickY:     255,
		AnalogDPad:      [4]uint8{1, 2, 3, 4},
		AnalogFace:      [4]uint8{5, 6, 7, 8},
		AnalogShoulder:  [4]uint8{9, 10, 11, 12},
		Touch1:          TouchPoint{Active: 1, ID: 3, X: 1234, Y: 567},
		Touch2:          TouchPoint{Active: 0, ID: 0, X: 0, Y: 0},
		MotionTimestamp: 123456789,
		AccelX:          1.5,
		AccelY:          -2.25,
		AccelZ:          0.125,
		GyroPitch:       90.5,
		GyroYaw:         -45.25,
		GyroRoll:        0.75,
	}
}

func TestPadDataRoundTrip(t *testing.T) {
	want := samplePadData()
	pkt := EncodePadDataResponse(0x12345678, want)
	require.Len(t, pkt, MaxPacketSize)

	typ, ok := Validate(pkt)
	require.True(t, ok)
	require.Equal(t, MessageTypePadData, typ)

	got, err := DecodePadData(pkt)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded pad data mismatch (-want +got):\n%s", diff)
	}
}

func TestVersionRoundTrip(t *testing.T) {
	pkt := EncodeVersionResponse(7, ProtocolVersion)
	require.Len(t, pkt, HeaderSize+versionPayloadSize)

	typ, ok := Validate(pkt)
	require.True(t, ok)
	assert.Equal(t, MessageTypeVersion, typ)

	got, err := DecodeVersion(pkt)
	require.NoError(t, err)
	assert.Equal(t, uint16(ProtocolVersion), got.Version)
}

func TestPortInfoRoundTrip(t *testing.T) {
	want := samplePadData().Info
	pkt := EncodePortInfoResponse(7, want)

	typ, ok := Validate(pkt)
	require.True(t, ok)
	assert.Equal(t, MessageTypePortInfo, typ)

	got, err := DecodePortInfo(pkt)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRequestRoundTrip(t *testing.T) {
	t.Run("port info", func(t *testing.T) {
		pkt := EncodePortInfoRequest(0xcafebabe, 0, 1)

		typ, ok := ValidateRequest(pkt)
		require.True(t, ok)
		assert.Equal(t, MessageTypePortInfo, typ)
		// Sender id is carried in the header.
		assert.Equal(t, uint32(0xcafebabe), binary.LittleEndian.Uint32(pkt[12:16]))

		req, err := DecodePortInfoRequest(pkt)
		require.NoError(t, err)
		assert.Equal(t, int32(2), req.PadCount)
		assert.Equal(t, [4]uint8{0, 1, 0, 0}, req.Slots)
	})

	t.Run("pad data", func(t *testing.T) {
		mac := [6]byte{1, 2, 3, 4, 5, 6}
		pkt := EncodePadDataRequest(1, RegisterBySlot|RegisterByMAC, 2, mac)

		typ, ok := ValidateRequest(pkt)
		require.True(t, ok)
		assert.Equal(t, MessageTypePadData, typ)

		req, err := DecodePadDataRequest(pkt)
		require.NoError(t, err)
		assert.Equal(t, RegisterBySlot|RegisterByMAC, req.Flags)
		assert.Equal(t, uint8(2), req.Slot)
		assert.Equal(t, mac, req.MAC)
	})
}

func TestValidateRejectsMalformed(t *testing.T) {
	good := EncodeVersionResponse(7, ProtocolVersion)

	corrupt := func(mutate func(b []byte)) []byte {
		b := make([]byte, len(good))
		copy(b, good)
		mutate(b)
		return b
	}

	tests := []struct {
		name string
		pkt  []byte
	}{
		{"empty", nil},
		{"shorter than header", good[:HeaderSize-1]},
		{"client magic on response path", corrupt(func(b []byte) { b[3] = 'C' })},
		{"garbage magic", corrupt(func(b []byte) { copy(b, "XXXX") })},
		{"wrong protocol version", corrupt(func(b []byte) {
			binary.LittleEndian.PutUint16(b[4:6], ProtocolVersion+1)
		})},
		{"declared length too short", corrupt(func(b []byte) {
			binary.LittleEndian.PutUint16(b[6:8], 2)
		})},
		{"truncated behind declared length", good[:len(good)-2]},
		{"corrupted crc", corrupt(func(b []byte) { b[8] ^= 0xff })},
		{"corrupted payload", corrupt(func(b []byte) { b[HeaderSize] ^= 0xff })},
		{"unknown event type", corrupt(func(b []byte) {
			binary.LittleEndian.PutUint32(b[16:20], 0x100003)
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Validate(tt.pkt)
			assert.False(t, ok)
		})
	}
}

func TestValidateChecksDirection(t *testing.T) {
	request := EncodePadDataRequest(1, RegisterBySlot, 0, [6]byte{})
	response := EncodePadDataResponse(1, samplePadData())

	_, ok := Validate(request)
	assert.False(t, ok, "client request must not validate as a response")
	_, ok = ValidateRequest(response)
	assert.False(t, ok, "server response must not validate as a request")
}

func TestDecodeShortBuffer(t *testing.T) {
	// Decoders must refuse buffers shorter than their fixed payload even if
	// the caller skipped validation.
	short := make([]byte, HeaderSize)

	_, err := DecodeVersion(short)
	assert.Error(t, err)
	_, err = DecodePortInfo(short)
	assert.Error(t, err)
	_, err = DecodePadData(short)
	assert.Error(t, err)
	_, err = DecodePortInfoRequest(short)
	assert.Error(t, err)
	_, err = DecodePadDataRequest(short)
	assert.Error(t, err)
}
