package runtime

import (
	"container/list"
	"context"
	"io"
	"net"
	"sync"
	"time"

	"go.bug.st/serial"
	"k8s.io/klog/v2"
)

// Clients is a small messenger pool. The monitor keeps Max at 1 so poll
// sweeps and command pulses are serialized on the single controller link,
// waiters are handed the messenger in FIFO order.
type Clients struct {
	NewMessenger func() (Messenger, error)
	Messengers   *list.List
	Max          int
	Idle         int
	Mux          *sync.Mutex
	ConnRequests map[uint64]chan Messenger
	NextRequest  uint64
}

func (t *Clients) GetMessenger(ctx context.Context) (Messenger, error) {
	select {
	default:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	t.Mux.Lock()
	if t.Idle > 0 {
		t.Idle = t.Idle - 1
		front := t.Messengers.Front()
		messenger := front.Value.(Messenger)
		t.Messengers.Remove(front)
		t.Mux.Unlock()
		return messenger, nil
	}

	mCh := make(chan Messenger, 1)
	key := t.nextRequestKey()
	t.ConnRequests[key] = mCh
	t.Mux.Unlock()

	select {
	case <-ctx.Done():
		t.Mux.Lock()
		delete(t.ConnRequests, key)
		t.Mux.Unlock()
		select {
		default:
		case m, ok := <-mCh:
			if ok && m.Available() {
				t.Messengers.PushBack(m)
			}
		}
		return nil, ctx.Err()
	case m, ok := <-mCh:
		if !ok {
			return nil, ErrMessengerClosed
		}
		return m, nil
	}
}

func (t *Clients) ReleaseMessenger(messenger Messenger) {
	t.Mux.Lock()
	defer t.Mux.Unlock()
	if t.Idle == 0 && len(t.ConnRequests) > 0 {
		var mCh chan Messenger
		var key uint64
		for key, mCh = range t.ConnRequests {
			break
		}
		delete(t.ConnRequests, key)
		mCh <- messenger
	} else {
		t.Messengers.PushBack(messenger)
		t.Idle = t.Idle + 1
	}
}

func (t *Clients) Destroy(ctx context.Context) {
	t.Mux.Lock()
	defer t.Mux.Unlock()
	for t.Messengers.Len() > 0 {
		e := t.Messengers.Front()
		m := e.Value.(Messenger)
		m.Close()
		t.Messengers.Remove(e)
	}
	t.Idle = 0

	for key, messengersRequest := range t.ConnRequests {
		close(messengersRequest)
		delete(t.ConnRequests, key)
	}
}

func (t *Clients) nextRequestKey() uint64 {
	next := t.NextRequest
	t.NextRequest++
	return next
}

var _ Messenger = (*TcpClient)(nil)
var _ Messenger = (*SerialClient)(nil)

type Messenger interface {
	AskAtLeast(request []byte, response []byte, min int) (int, error)
	Close()
	Available() bool
	Reset(messenger Messenger)
}

type TcpClient struct {
	Timeout time.Duration
	Tunnel  net.Conn
}

func (tc *TcpClient) Reset(messenger Messenger) {
	ntc := (messenger).(*TcpClient)
	tc.Tunnel = ntc.Tunnel
}

func (tc *TcpClient) Available() bool {
	return tc.Tunnel != nil
}

func (tc *TcpClient) Close() {
	if tc.Tunnel != nil {
		_ = tc.Tunnel.Close()
	}
}

func (tc *TcpClient) AskAtLeast(request []byte, response []byte, min int) (int, error) {
	_, err := tc.Tunnel.Write(request)
	if err != nil {
		klog.V(2).InfoS("Failed to ask message", "error", err)
		return 0, ErrModbusBadConn
	}
	// 设置读超时
	deadLineTime := time.Now().Add(tc.Timeout)

	err = tc.Tunnel.SetReadDeadline(deadLineTime)
	if err != nil {
		klog.V(2).InfoS("Tcp connect timeout", "error", err)
		return 0, err
	}
	return io.ReadAtLeast(tc.Tunnel, response, min)
}

type SerialClient struct {
	Timeout time.Duration
	Port    serial.Port
}

func (sc *SerialClient) Reset(messenger Messenger) {
	nsc := (messenger).(*SerialClient)
	sc.Port = nsc.Port
}

func (sc *SerialClient) Available() bool {
	return sc.Port != nil
}

func (sc *SerialClient) Close() {
	if sc.Port != nil {
		_ = sc.Port.Close()
	}
}

func (sc *SerialClient) AskAtLeast(request []byte, response []byte, min int) (int, error) {
	rql, err := sc.Port.Write(request)
	if err != nil {
		klog.V(2).InfoS("Failed to write byte to series port", "error", err)
		return 0, ErrModbusBadConn
	}
	klog.V(5).InfoS("Succeed to write byte to series port", "bytes", request, "length", rql)
	// 设置读超时
	err = sc.Port.SetReadTimeout(sc.Timeout)
	if err != nil {
		klog.V(2).InfoS("Serial port connect timeout", "error", err)
		return 0, err
	}

	buf := make([]byte, 256)
	responseBytesLength := len(response)
	bytesLength := 0
	currentIndex := 0

	for {
		n, err := sc.Port.Read(buf)
		if err != nil {
			klog.V(2).InfoS("Failed to read byte from series port", "error", err)
			return 0, err
		}
		if n == 0 {
			break
		}
		bytesLength += n

		for i := 0; i < n && currentIndex < responseBytesLength; i++ {
			response[currentIndex] = buf[i]
			currentIndex++
		}

		if bytesLength >= responseBytesLength {
			break
		}
	}
	if bytesLength < min {
		klog.V(2).InfoS("Modbus rtu data length no enough", "bytesLength", bytesLength)
		return bytesLength, ErrMessageDataLengthNotEnough
	}

	return bytesLength, nil
}
