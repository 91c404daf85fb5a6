package notify

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// BridgeMessage is one line written by Bridge.
type BridgeMessage struct {
	Type         string       `json:"type"`
	Notification Notification `json:"notification"`
	Sound        string       `json:"sound,omitempty"`
	Vibrate      bool         `json:"vibrate,omitempty"`
	SentAt       time.Time    `json:"sentAt"`
}

// Bridge hands notifications to a host shell as JSON lines, for hosts that
// show notifications themselves.
type Bridge struct {
	mu      sync.Mutex
	enc     *json.Encoder
	Sound   string
	Vibrate bool
	Now     func() time.Time
}

var _ Channel = (*Bridge)(nil)

// NewBridge writes messages to w.
func NewBridge(w io.Writer) *Bridge {
	return &Bridge{enc: json.NewEncoder(w), Now: time.Now}
}

func (b *Bridge) Name() string { return "bridge" }

func (b *Bridge) Notify(_ context.Context, n Notification) error {
	return b.send("notification", n)
}

func (b *Bridge) send(kind string, n Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enc.Encode(BridgeMessage{
		Type:         kind,
		Notification: n,
		Sound:        b.Sound,
		Vibrate:      b.Vibrate,
		SentAt:       b.Now(),
	})
}
