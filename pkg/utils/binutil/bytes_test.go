package binutil

import (
	"testing"
)

func TestParseUint16(t *testing.T) {
	buf := []byte{0x12, 0x34}

	if actual := ParseUint16BigEndian(buf); actual != 0x1234 {
		t.Errorf("actual %v, expect %v", actual, 0x1234)
	}
	if actual := ParseUint16LittleEndian(buf); actual != 0x3412 {
		t.Errorf("actual %v, expect %v", actual, 0x3412)
	}
}

func TestParseUint32Layouts(t *testing.T) {
	buf := []byte{0x12, 0x34, 0x56, 0x78}

	if actual := ParseUint32BigEndian(buf); actual != 0x12345678 {
		t.Errorf("actual %x, expect %x", actual, 0x12345678)
	}
	if actual := ParseUint32BigEndianByteSwap(buf); actual != 0x34127856 {
		t.Errorf("actual %x, expect %x", actual, 0x34127856)
	}
	if actual := ParseUint32LittleEndian(buf); actual != 0x78563412 {
		t.Errorf("actual %x, expect %x", actual, 0x78563412)
	}
	if actual := ParseUint32LittleEndianByteSwap(buf); actual != 0x56781234 {
		t.Errorf("actual %x, expect %x", actual, 0x56781234)
	}
}

func TestFloat32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	WriteFloat32(buf, 123.625)

	if actual := ParseFloat32BigEndian(buf); actual != 123.625 {
		t.Errorf("actual %v, expect %v", actual, 123.625)
	}

	swapped := []byte{buf[1], buf[0], buf[3], buf[2]}
	if actual := ParseFloat32BigEndianByteSwap(swapped); actual != 123.625 {
		t.Errorf("actual %v, expect %v", actual, 123.625)
	}

	reversed := []byte{buf[3], buf[2], buf[1], buf[0]}
	if actual := ParseFloat32LittleEndian(reversed); actual != 123.625 {
		t.Errorf("actual %v, expect %v", actual, 123.625)
	}

	wordSwapped := []byte{buf[2], buf[3], buf[0], buf[1]}
	if actual := ParseFloat32LittleEndianByteSwap(wordSwapped); actual != 123.625 {
		t.Errorf("actual %v, expect %v", actual, 123.625)
	}
}

func TestWriteUint16(t *testing.T) {
	buf := make([]byte, 2)
	WriteUint16(buf, 0xC5CD)

	if buf[0] != 0xC5 || buf[1] != 0xCD {
		t.Errorf("actual %x, expect c5cd", buf)
	}
}

func TestDup(t *testing.T) {
	src := []byte{1, 2, 3}
	dst := Dup(src)
	dst[0] = 9

	if src[0] != 1 {
		t.Errorf("actual %v, expect %v", src[0], 1)
	}
}

func TestExpandBool(t *testing.T) {
	// 0b00100101 -> bits 0,2,5
	expanded := ExpandBool([]byte{0x25}, 1)

	if len(expanded) != 8 {
		t.Fatalf("actual %v, expect %v", len(expanded), 8)
	}
	expect := []byte{1, 0, 1, 0, 0, 1, 0, 0}
	for i := range expect {
		if expanded[i] != expect[i] {
			t.Errorf("bit %d actual %v, expect %v", i, expanded[i], expect[i])
		}
	}
}
