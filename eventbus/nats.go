package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"taskboard-service/logging"
	"taskboard-service/models"

	"github.com/nats-io/nats.go"
)

// SubjectTaskEvents is the subject task mutation events are published on.
const SubjectTaskEvents = "taskboard.tasks.events"

// NATSBus is the deployment transport: events cross a NATS subject, so
// viewer sessions on any instance of the service receive them. NATS
// delivers messages to each subscription in publish order, which keeps
// the per-session causal ordering guarantee.
type NATSBus struct {
	nc *nats.Conn
}

// ConnectNATS dials the given NATS URL with retry.
func ConnectNATS(url string) (*NATSBus, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logging.Logger.Infof("Event ID: NATS_CONNECTED, Description: Connected to NATS at %s", url)
	return &NATSBus{nc: nc}, nil
}

// Publish is fire-and-forget: a broken transport must never fail the
// mutation that already committed, so errors are only logged.
func (b *NATSBus) Publish(event models.TaskEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logging.Logger.Errorf("Event ID: EVENT_MARSHAL_FAILED, Description: Failed to marshal %s event for task %d: %v", event.Kind, event.TaskID, err)
		return
	}
	if err := b.nc.Publish(SubjectTaskEvents, data); err != nil {
		logging.Logger.Warnf("Event ID: EVENT_PUBLISH_FAILED, Description: Failed to publish %s event for task %d: %v", event.Kind, event.TaskID, err)
	}
}

func (b *NATSBus) Subscribe(h Handler) (func(), error) {
	sub, err := b.nc.Subscribe(SubjectTaskEvents, func(msg *nats.Msg) {
		var event models.TaskEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logging.Logger.Warnf("Event ID: EVENT_UNMARSHAL_FAILED, Description: Dropping malformed task event: %v", err)
			return
		}
		h(event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", SubjectTaskEvents, err)
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil {
			logging.Logger.Warnf("Event ID: NATS_UNSUBSCRIBE_FAILED, Description: %v", err)
		}
	}, nil
}

func (b *NATSBus) Close() {
	b.nc.Close()
}
