package runtime

import (
	generator "gensetgateway/pkg/generator/runtime"
	"gensetgateway/pkg/utils/binutil"
)

// PointParse binds one register point to its byte position inside the
// response data of the frame that reads it.
type PointParse struct {
	Point *generator.RegisterPoint
	// Start 报文中数据[]byte开始位置
	Start uint16
}

// DataFrame is one prebuilt request with the matching response buffer.
// The request bytes are generated once, only the transaction id is
// rewritten before each ask.
type DataFrame struct {
	UnitId            byte
	FunctionCode      FunctionCode
	StartAddress      uint16
	Quantity          uint16 // coils for 01/02, words for 03/04
	TransactionId     uint16
	DataFrame         []byte
	ResponseDataFrame []byte
	Points            []*PointParse
}

func (df *DataFrame) WriteTransactionId() {
	df.TransactionId++
	binutil.WriteUint16(df.DataFrame, df.TransactionId)
}

// ParsePointBytes slices the extracted data bytes per point. Points close
// to the end of a truncated response get the partial tail so the decoder
// can report them as short instead of panicking here.
func (df *DataFrame) ParsePointBytes(data []byte) map[string][]byte {
	raw := make(map[string][]byte, len(df.Points))
	for _, pp := range df.Points {
		start := int(pp.Start)
		if start >= len(data) {
			raw[pp.Point.Name] = []byte{}
			continue
		}
		var end int
		switch df.FunctionCode {
		case ReadCoilStatus, ReadInputStatus:
			end = start + 1
		default:
			end = start + int(pp.Point.Words())*2
		}
		if end > len(data) {
			end = len(data)
		}
		raw[pp.Point.Name] = binutil.Dup(data[start:end])
	}
	return raw
}
