package effects

import "github.com/magefree/effect-engine/internal/game/rules"

// NotificationEffect carries a game event through the evaluate/resolve pipeline so
// persistent effects can react to it. Its action does nothing.
type NotificationEffect struct {
	Base
	event rules.EventType
}

// NewNotification builds a notification effect for event.
func NewNotification(event rules.EventType, spec Spec) (*NotificationEffect, error) {
	if spec.Description == "" {
		spec.Description = string(event)
	}
	b, err := newBase(spec)
	if err != nil {
		return nil, err
	}
	return &NotificationEffect{Base: b, event: event}, nil
}

// Event returns the carried event type.
func (n *NotificationEffect) Event() rules.EventType { return n.event }

func (n *NotificationEffect) Kind() Kind { return KindNotification }

func (n *NotificationEffect) Execute(Context) error { return nil }

func (n *NotificationEffect) Clone() Effect {
	return &NotificationEffect{Base: n.derive(n), event: n.event}
}

// EventIs is fulfilled when the subject is a notification carrying one of events.
func EventIs(events ...rules.EventType) rules.Condition[Context, Effect] {
	return rules.Func[Context, Effect](func(_ Context, subject Effect) (bool, error) {
		n, ok := subject.(*NotificationEffect)
		if !ok {
			return false, nil
		}
		for _, e := range events {
			if n.event == e {
				return true, nil
			}
		}
		return false, nil
	})
}
