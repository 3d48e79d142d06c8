package gateway

import (
	"bytes"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"k8s.io/klog/v2"

	"gensetgateway/pkg/runtime"
	"gensetgateway/pkg/storage"
	"gensetgateway/pkg/utils/randutil"
	"gensetgateway/pkg/utils/uuidutil"
)

type Option func(*Manager)

type Manager struct {
	gatewayMeta *GatewayMeta
	basePath    string
	stopCh      <-chan struct{}
}

func NewGatewayManager(basePath string, stop <-chan struct{}, opts ...Option) *Manager {
	m := &Manager{
		gatewayMeta: &GatewayMeta{},
		basePath:    basePath,
		stopCh:      stop,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Init() {
	client := &storage.FsClient{}
	client.Init(m.basePath, storage.StoreGroupGateway)

	gd, err := client.Get(gateway)
	if err != nil {
		if !os.IsNotExist(err) {
			klog.V(2).InfoS("Failed to read gateway information", "err", err)
			return
		}
		m.gatewayMeta = &GatewayMeta{
			Secret: "",
			ObjectMeta: runtime.ObjectMeta{
				Name:    "gensetgateway",
				ID:      uuidutil.UUID(),
				Version: strconv.FormatUint(randutil.Uint64n(), 10),
				ModTime: time.Now(),
			},
		}
		klog.V(3).InfoS("Gateway information not exist,been created automatically", "gatewayId", m.gatewayMeta.ID)
		if _, err := client.Create(gateway, m.gatewayMeta); err != nil {
			klog.V(2).InfoS("Failed to create gateway information", "err", err)
		}
		return
	}
	if err := json.NewDecoder(bytes.NewReader(gd.([]byte))).Decode(m.gatewayMeta); err != nil {
		klog.V(2).InfoS("Failed to unmarshal gateway information", "err", err)
	}
}

func (m *Manager) GetGatewayMeta() (*GatewayMeta, error) {
	return m.gatewayMeta, nil
}
