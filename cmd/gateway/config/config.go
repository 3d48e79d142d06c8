package config

import (
	"gensetgateway/pkg/gateway"
	"gensetgateway/pkg/monitor"
)

type Config struct {
	MonitorMgr *monitor.Manager
	GatewayMgr *gateway.Manager
	CertFile   string
	KeyFile    string
}
