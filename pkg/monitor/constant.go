package monitor

import (
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/sets"
	"time"
)

// operators accepted on the monitoring switch endpoint
const (
	SwitchStart   = "start"
	SwitchStop    = "stop"
	SwitchRestart = "restart"
)

var switchStatuses = sets.NewString(SwitchStart, SwitchStop, SwitchRestart)

var patchTypes = sets.NewString(string(types.JSONPatchType), string(types.MergePatchType))

const (
	maxJSONPatchOperations = 1000
	heartBeatTimeInterval  = 15 * time.Second
	destroyTimeout         = 30 * time.Second
	defaultHistoryHours    = 24
)
