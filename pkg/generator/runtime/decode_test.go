package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gensetgateway/pkg/runtime/constant"
	"gensetgateway/pkg/utils/binutil"
)

func TestDecodePointFloat32RoundTrip(t *testing.T) {
	point := &RegisterPoint{
		Name:          PointFrequency,
		Address:       10,
		RegisterClass: RegisterHolding,
		WireType:      WireFloat32,
		Scale:         1,
	}

	abcd := make([]byte, 4)
	binutil.WriteFloat32(abcd, 59.94)

	cases := []struct {
		layout constant.MemoryLayout
		data   []byte
	}{
		{constant.ABCD, abcd},
		{constant.BADC, []byte{abcd[1], abcd[0], abcd[3], abcd[2]}},
		{constant.CDAB, []byte{abcd[2], abcd[3], abcd[0], abcd[1]}},
		{constant.DCBA, []byte{abcd[3], abcd[2], abcd[1], abcd[0]}},
	}

	for _, c := range cases {
		t.Run(constant.MemoryLayoutToString[c.layout], func(t *testing.T) {
			value, err := DecodePoint(point, c.layout, c.data)
			require.NoError(t, err)
			assert.InDelta(t, 59.94, value.(float64), 0.001)
		})
	}
}

func TestDecodePointScaleAndOffset(t *testing.T) {
	t.Run("uint16 scale", func(t *testing.T) {
		point := &RegisterPoint{
			Name:          PointVoltage,
			RegisterClass: RegisterHolding,
			WireType:      WireUint16,
			Scale:         0.1,
		}
		value, err := DecodePoint(point, constant.ABCD, []byte{0x09, 0xA6}) // 2470
		require.NoError(t, err)
		assert.Equal(t, 247.0, value)
	})

	t.Run("int16 twos complement", func(t *testing.T) {
		point := &RegisterPoint{
			Name:          PointCoolantTemperature,
			RegisterClass: RegisterHolding,
			WireType:      WireInt16,
			Scale:         1,
		}
		value, err := DecodePoint(point, constant.ABCD, []byte{0xFF, 0xD8}) // -40
		require.NoError(t, err)
		assert.Equal(t, -40.0, value)
	})

	t.Run("scale with offset", func(t *testing.T) {
		point := &RegisterPoint{
			Name:          PointOilTemperature,
			RegisterClass: RegisterHolding,
			WireType:      WireUint16,
			Scale:         0.5,
			Offset:        -40,
		}
		value, err := DecodePoint(point, constant.ABCD, []byte{0x00, 0x7B}) // 123
		require.NoError(t, err)
		assert.Equal(t, 21.5, value)
	})

	t.Run("zero scale treated as one", func(t *testing.T) {
		point := &RegisterPoint{
			Name:          PointRpm,
			RegisterClass: RegisterHolding,
			WireType:      WireUint16,
		}
		value, err := DecodePoint(point, constant.ABCD, []byte{0x07, 0x08}) // 1800
		require.NoError(t, err)
		assert.Equal(t, 1800.0, value)
	})
}

func TestDecodePointTwoWord(t *testing.T) {
	point := &RegisterPoint{
		Name:          PointRuntimeHours,
		RegisterClass: RegisterHolding,
		WireType:      WireUint32,
		Scale:         1,
	}

	// 0x00010000 = 65536, high word first
	value, err := DecodePoint(point, constant.ABCD, []byte{0x00, 0x01, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, 65536.0, value)

	// same quantity with swapped words
	value, err = DecodePoint(point, constant.CDAB, []byte{0x00, 0x00, 0x00, 0x01})
	require.NoError(t, err)
	assert.Equal(t, 65536.0, value)
}

func TestDecodePointBool(t *testing.T) {
	coil := &RegisterPoint{
		Name:          PointStartCommand,
		RegisterClass: RegisterCoil,
		WireType:      WireBool,
	}
	value, err := DecodePoint(coil, constant.ABCD, []byte{1})
	require.NoError(t, err)
	assert.Equal(t, true, value)

	word := &RegisterPoint{
		Name:          "breakerClosed",
		RegisterClass: RegisterHolding,
		WireType:      WireBool,
	}
	value, err = DecodePoint(word, constant.ABCD, []byte{0x00, 0x04})
	require.NoError(t, err)
	assert.Equal(t, true, value)

	value, err = DecodePoint(word, constant.ABCD, []byte{0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, false, value)
}

func TestDecodePointShortResponse(t *testing.T) {
	point := &RegisterPoint{
		Name:          PointRuntimeHours,
		RegisterClass: RegisterHolding,
		WireType:      WireUint32,
	}

	_, err := DecodePoint(point, constant.ABCD, []byte{0x00, 0x01})
	require.Error(t, err)
	assert.Contains(t, err.Error(), PointRuntimeHours)
}

func TestDecodeResultPartialFailure(t *testing.T) {
	m := &RegisterMap{
		Brand:        BrandGenerac,
		MemoryLayout: constant.ABCD,
		Points: []*RegisterPoint{
			{Name: PointVoltage, Address: 1, RegisterClass: RegisterHolding, WireType: WireUint16, Scale: 0.1},
			{Name: PointRpm, Address: 2, RegisterClass: RegisterHolding, WireType: WireUint16, Scale: 1},
			{Name: PointRuntimeHours, Address: 3, RegisterClass: RegisterHolding, WireType: WireUint32, Scale: 1},
		},
	}
	m.Index()

	raw := &RawResult{
		Timestamp: time.Now(),
		Raw: map[string][]byte{
			PointVoltage:      {0x09, 0x60}, // 2400
			PointRpm:          {0x07, 0x08}, // 1800
			PointRuntimeHours: {0x00},       // truncated
		},
		Errors:           []string{"register oilPressure: connection reset"},
		ConnectionStatus: Connected,
	}

	result := DecodeResult(m, raw)

	assert.Equal(t, 240.0, result.Values[PointVoltage])
	assert.Equal(t, 1800.0, result.Values[PointRpm])
	_, ok := result.Values[PointRuntimeHours]
	assert.False(t, ok)

	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "oilPressure")
	assert.Contains(t, result.Errors[1], PointRuntimeHours)
}
