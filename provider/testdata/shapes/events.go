package shapes

import (
	stdjson "encoding/json"
	"time"

	"github.com/hashicorp/go-multierror"
)

//variation:enum trimprefix=Event output=events_gen.go nomut
type Event interface {
	isEvent()
	Kind() string
}

type EventTick struct {
	time.Duration
	At time.Time
}

func (*EventTick) isEvent()     {}
func (*EventTick) Kind() string { return "tick" }

type EventPayload struct {
	Raw    stdjson.RawMessage
	Errors *multierror.Error
	Fn     func(at time.Time) (n int, err error)
}

func (EventPayload) isEvent()     {}
func (EventPayload) Kind() string { return "payload" }
