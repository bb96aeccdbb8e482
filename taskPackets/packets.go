package taskpackets

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alekLukanen/errs"
)

const (
	TriggerEventName = "brewery-trigger-event"
)

// TriggerEvent is the payload that starts one job run. Every field is
// optional and the job behaves the same for any event, the event is only
// carried into the logs.
type TriggerEvent struct {
	Source      string          `json:"source,omitempty"`
	RequestedAt time.Time       `json:"requested_at"`
	Detail      json.RawMessage `json:"detail,omitempty"`
}

func (obj *TriggerEvent) Id() string {
	if obj.RequestedAt.IsZero() {
		return fmt.Sprintf("%s-%s", obj.Name(), obj.Source)
	}
	return fmt.Sprintf("%s-%s-%d", obj.Name(), obj.Source, obj.RequestedAt.UnixMilli())
}
func (obj *TriggerEvent) Name() string { return TriggerEventName }
func (obj *TriggerEvent) Marshal() ([]byte, error) {
	return json.Marshal(obj)
}
func (obj *TriggerEvent) Unmarshal(d []byte) error {
	if len(d) == 0 {
		*obj = TriggerEvent{}
		return nil
	}
	if err := json.Unmarshal(d, obj); err != nil {
		return errs.Wrap(errs.NewStackError(err), ErrInvalidEvent)
	}
	return nil
}
