package notifier

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"k8s.io/klog/v2"

	"gensetgateway/pkg/generator"
	"gensetgateway/pkg/runtime"
)

const (
	connectTimeout      = 10 * time.Second
	publishTimeout      = 3 * time.Second
	disconnectQuiesceMs = 2000
)

// Notifier pushes generator status and lifecycle events to the MQTT broker.
// The last will marks the gateway offline when the link drops uncleanly.
type Notifier struct {
	client    mqtt.Client
	gatewayId string
}

func New(brokerUrl string, clientId string, gatewayId string) (*Notifier, error) {
	n := &Notifier{gatewayId: gatewayId}
	options := mqtt.NewClientOptions().
		AddBroker(brokerUrl).
		SetClientID(clientId).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false).
		SetWill(n.stateTopic(), "offline", 1, true)

	client := mqtt.NewClient(options)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) || token.Error() != nil {
		return nil, fmt.Errorf("Failed to connect mqtt broker %s: %v", brokerUrl, token.Error())
	}
	n.client = client
	n.publish(n.stateTopic(), []byte("online"), true)
	return n, nil
}

// Pump drains the hub subscription until the monitor closes it. Status
// changes go to the status topic as time series payloads, everything else
// to the events topic.
func (n *Notifier) Pump(hub *generator.Hub) {
	id, events := hub.Subscribe()
	go func() {
		klog.V(1).InfoS("Started mqtt notifier pump", "subscriber", id)
		for event := range events {
			switch event.Type {
			case generator.EventStatusChanged:
				n.publishStatus(event)
			default:
				n.publishEvent(event)
			}
		}
		klog.V(1).InfoS("Stopped mqtt notifier pump", "subscriber", id)
	}()
}

func (n *Notifier) Close() {
	n.publish(n.stateTopic(), []byte("offline"), true)
	n.client.Disconnect(disconnectQuiesceMs)
}

func (n *Notifier) publishStatus(event generator.Event) {
	if event.Status == nil {
		klog.V(2).InfoS("Skipped status publish, event carried no status")
		return
	}
	status := event.Status
	points := []runtime.PointData{
		{DataPointId: "running", Value: status.Running},
		{DataPointId: "loaded", Value: status.Loaded},
		{DataPointId: "cooldown", Value: status.Cooldown},
		{DataPointId: "ready", Value: status.Ready},
		{DataPointId: "starting", Value: status.Starting},
		{DataPointId: "stopping", Value: status.Stopping},
		{DataPointId: "mainsAvailable", Value: status.MainsAvailable},
		{DataPointId: "generatorOnline", Value: status.GeneratorOnline},
		{DataPointId: "transferSwitch", Value: status.TransferSwitch},
		{DataPointId: "voltage", Value: status.Metrics.Voltage},
		{DataPointId: "current", Value: status.Metrics.Current},
		{DataPointId: "frequency", Value: status.Metrics.Frequency},
		{DataPointId: "powerKW", Value: status.Metrics.PowerKW},
		{DataPointId: "powerFactor", Value: status.Metrics.PowerFactor},
		{DataPointId: "oilTemperature", Value: status.Metrics.OilTemperature},
		{DataPointId: "coolantTemperature", Value: status.Metrics.CoolantTemperature},
		{DataPointId: "exhaustTemperature", Value: status.Metrics.ExhaustTemperature},
		{DataPointId: "rpm", Value: status.Metrics.Rpm},
		{DataPointId: "oilPressure", Value: status.Metrics.OilPressure},
		{DataPointId: "fuelPressure", Value: status.Metrics.FuelPressure},
		{DataPointId: "mainsVoltage", Value: status.Metrics.MainsVoltage},
		{DataPointId: "runtimeHours", Value: status.Metrics.RuntimeHours},
		{DataPointId: "fuelLevel", Value: status.Metrics.FuelLevel},
		{DataPointId: "batteryVoltage", Value: status.Metrics.BatteryVoltage},
		{DataPointId: "maintenanceDueInHours", Value: status.MaintenanceDueInHours},
		{DataPointId: "alarms", Value: status.Alarms},
		{DataPointId: "faults", Value: status.Faults},
		{DataPointId: "warnings", Value: status.Warnings},
	}
	publishData := runtime.PublishData{Payload: runtime.Payload{Data: []runtime.TimeSeriesData{{
		Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		Values:    points,
	}}}}

	marshal, _ := json.Marshal(publishData)
	n.publish(n.statusTopic(), marshal, false)
}

func (n *Notifier) publishEvent(event generator.Event) {
	marshal, _ := json.Marshal(event)
	n.publish(n.eventTopic(), marshal, false)
}

func (n *Notifier) publish(topic string, payload []byte, retained bool) {
	token := n.client.Publish(topic, 1, retained, payload)
	if token.WaitTimeout(publishTimeout) && token.Error() == nil {
		klog.V(5).InfoS("Succeed to publish MQTT", "topic", topic)
	} else {
		klog.V(1).InfoS("Failed to publish MQTT", "topic", topic, "err", token.Error())
	}
}

func (n *Notifier) statusTopic() string {
	return fmt.Sprintf("generators/%s/status", n.gatewayId)
}

func (n *Notifier) eventTopic() string {
	return fmt.Sprintf("generators/%s/events", n.gatewayId)
}

func (n *Notifier) stateTopic() string {
	return fmt.Sprintf("generators/%s/state", n.gatewayId)
}
