package crcutil

import (
	"testing"
)

func TestCheckCrc16sum(t *testing.T) {
	cases := []struct {
		message []byte
		expect  uint16
	}{
		// 01 03 00 00 00 0A -> C5 CD
		{[]byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x0A}, 0xC5CD},
		// 01 04 03 20 00 02 -> 70 45
		{[]byte{0x01, 0x04, 0x03, 0x20, 0x00, 0x02}, 0x7045},
		// 01 05 00 12 FF 00 -> 2C 3F
		{[]byte{0x01, 0x05, 0x00, 0x12, 0xFF, 0x00}, 0x2C3F},
		// 11 03 00 6B 00 03 -> 76 87
		{[]byte{0x11, 0x03, 0x00, 0x6B, 0x00, 0x03}, 0x7687},
	}

	for _, c := range cases {
		if actual := CheckCrc16sum(c.message); actual != c.expect {
			t.Errorf("actual %04X, expect %04X", actual, c.expect)
		}
	}
}
