package runtime

import (
	"fmt"

	"gensetgateway/pkg/runtime/constant"
	"gensetgateway/pkg/utils/binutil"
)

// DecodePoint turns the raw register bytes of one point into its typed
// value. Numeric values come back as float64 with scale and offset already
// applied, booleans are never scaled.
func DecodePoint(point *RegisterPoint, layout constant.MemoryLayout, data []byte) (interface{}, error) {
	switch point.RegisterClass {
	case RegisterCoil, RegisterDiscrete:
		if len(data) < 1 {
			return nil, &RegisterReadError{Register: point.Name, Cause: "empty coil response"}
		}
		return data[0] > 0, nil
	}

	want := int(WireTypeWords[point.WireType]) * 2
	if len(data) < want {
		return nil, &RegisterReadError{Register: point.Name, Cause: fmt.Sprintf("short response, got %d bytes want %d", len(data), want)}
	}

	var value float64
	switch point.WireType {
	case WireBool:
		var v uint16
		switch layout {
		case constant.ABCD, constant.CDAB:
			v = binutil.ParseUint16BigEndian(data)
		case constant.BADC, constant.DCBA:
			v = binutil.ParseUint16LittleEndian(data)
		}
		return v != 0, nil
	case WireUint16:
		var v uint16
		switch layout {
		case constant.ABCD, constant.CDAB:
			v = binutil.ParseUint16BigEndian(data)
		case constant.BADC, constant.DCBA:
			v = binutil.ParseUint16LittleEndian(data)
		}
		value = float64(v)
	case WireInt16:
		var v int16
		switch layout {
		case constant.ABCD, constant.CDAB:
			v = int16(binutil.ParseUint16BigEndian(data))
		case constant.BADC, constant.DCBA:
			v = int16(binutil.ParseUint16LittleEndian(data))
		}
		value = float64(v)
	case WireUint32:
		var v uint32
		switch layout {
		case constant.ABCD:
			v = binutil.ParseUint32BigEndian(data)
		case constant.BADC:
			v = binutil.ParseUint32BigEndianByteSwap(data)
		case constant.CDAB:
			v = binutil.ParseUint32LittleEndianByteSwap(data)
		case constant.DCBA:
			v = binutil.ParseUint32LittleEndian(data)
		}
		value = float64(v)
	case WireInt32:
		var v int32
		switch layout {
		case constant.ABCD:
			v = int32(binutil.ParseUint32BigEndian(data))
		case constant.BADC:
			v = int32(binutil.ParseUint32BigEndianByteSwap(data))
		case constant.CDAB:
			v = int32(binutil.ParseUint32LittleEndianByteSwap(data))
		case constant.DCBA:
			v = int32(binutil.ParseUint32LittleEndian(data))
		}
		value = float64(v)
	case WireFloat32:
		var v float32
		switch layout {
		case constant.ABCD:
			v = binutil.ParseFloat32BigEndian(data)
		case constant.BADC:
			v = binutil.ParseFloat32BigEndianByteSwap(data)
		case constant.CDAB:
			v = binutil.ParseFloat32LittleEndianByteSwap(data)
		case constant.DCBA:
			v = binutil.ParseFloat32LittleEndian(data)
		}
		value = float64(v)
	default:
		return nil, &RegisterReadError{Register: point.Name, Cause: fmt.Sprintf("unsupported wire type %d", point.WireType)}
	}

	scale := point.Scale
	if scale == 0 {
		scale = 1
	}
	return value*scale + point.Offset, nil
}

// DecodeResult decodes a raw transport sweep into a ReadResult. Transport
// level errors carry over first, decode failures append after them in map
// order. A point that fails stays absent from Values.
func DecodeResult(m *RegisterMap, raw *RawResult) *ReadResult {
	result := &ReadResult{
		Timestamp:        raw.Timestamp,
		Values:           make(map[string]interface{}, len(raw.Raw)),
		Errors:           append([]string(nil), raw.Errors...),
		ConnectionStatus: raw.ConnectionStatus,
	}

	for _, point := range m.PollPoints() {
		data, ok := raw.Raw[point.Name]
		if !ok {
			continue
		}
		value, err := DecodePoint(point, m.MemoryLayout, data)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Values[point.Name] = value
	}

	return result
}
