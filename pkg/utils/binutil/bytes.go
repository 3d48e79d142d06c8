package binutil

import "math"

// ParseUint16BigEndian AB
func ParseUint16BigEndian(buf []byte) uint16 {
	return uint16(buf[0])<<8 + uint16(buf[1])
}

// ParseUint16LittleEndian BA
func ParseUint16LittleEndian(buf []byte) uint16 {
	return uint16(buf[1])<<8 + uint16(buf[0])
}

// ParseUint32BigEndian ABCD
func ParseUint32BigEndian(buf []byte) uint32 {
	return uint32(buf[0])<<24 +
		uint32(buf[1])<<16 +
		uint32(buf[2])<<8 +
		uint32(buf[3])
}

// ParseUint32BigEndianByteSwap BADC
func ParseUint32BigEndianByteSwap(buf []byte) uint32 {
	return uint32(buf[1])<<24 +
		uint32(buf[0])<<16 +
		uint32(buf[3])<<8 +
		uint32(buf[2])
}

// ParseUint32LittleEndian DCBA
func ParseUint32LittleEndian(buf []byte) uint32 {
	return uint32(buf[3])<<24 +
		uint32(buf[2])<<16 +
		uint32(buf[1])<<8 +
		uint32(buf[0])
}

// ParseUint32LittleEndianByteSwap CDAB
func ParseUint32LittleEndianByteSwap(buf []byte) uint32 {
	return uint32(buf[2])<<24 +
		uint32(buf[3])<<16 +
		uint32(buf[0])<<8 +
		uint32(buf[1])
}

func ParseFloat32BigEndian(buf []byte) float32 {
	val := ParseUint32BigEndian(buf)
	return math.Float32frombits(val)
}

func ParseFloat32BigEndianByteSwap(buf []byte) float32 {
	val := ParseUint32BigEndianByteSwap(buf)
	return math.Float32frombits(val)
}

func ParseFloat32LittleEndian(buf []byte) float32 {
	val := ParseUint32LittleEndian(buf)
	return math.Float32frombits(val)
}

func ParseFloat32LittleEndianByteSwap(buf []byte) float32 {
	val := ParseUint32LittleEndianByteSwap(buf)
	return math.Float32frombits(val)
}

// WriteUint16 编码
func WriteUint16(buf []byte, value uint16) {
	buf[0] = byte(value >> 8)
	buf[1] = byte(value)
}

// WriteUint32 编码
func WriteUint32(buf []byte, value uint32) {
	buf[0] = byte(value >> 24)
	buf[1] = byte(value >> 16)
	buf[2] = byte(value >> 8)
	buf[3] = byte(value)
}

// WriteFloat32 编码
func WriteFloat32(buf []byte, value float32) {
	val := math.Float32bits(value)
	WriteUint32(buf, val)
}

// Dup 复制
func Dup(buf []byte) []byte {
	b := make([]byte, len(buf))
	copy(b, buf)
	return b
}

// ExpandBool 展开布尔类型
func ExpandBool(buf []byte, count int) []byte {
	if count > len(buf) {
		count = len(buf)
	}
	expandLength := count << 3
	b := make([]byte, expandLength)
	for i := 0; i < expandLength; i++ {
		if buf[i>>3]&(1<<(i&0x07)) > 0 {
			b[i] = 1
		}
	}
	return b
}
