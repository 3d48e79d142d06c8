package crcutil

// CheckCrc16sum CRC-16/MODBUS of data, byte swapped so that a big endian
// write puts the low byte first on the wire.
func CheckCrc16sum(data []byte) uint16 {
	var crc uint16 = 0xFFFF
	for _, d := range data {
		crc ^= uint16(d)
		for i := 0; i < 8; i++ {
			if crc&0x0001 > 0 {
				crc = crc>>1 ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc<<8 | crc>>8
}
