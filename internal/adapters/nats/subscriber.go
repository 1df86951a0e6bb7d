package natsadapter

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// SceneRelay forwards scene updates of single sessions to a callback. Plain
// subscriptions are used so each websocket sees only messages published
// after it connected.
type SceneRelay struct {
	conn *nats.Conn
}

// NewSceneRelay wraps an existing connection.
func NewSceneRelay(conn *nats.Conn) *SceneRelay {
	return &SceneRelay{conn: conn}
}

// Connected reports whether the connection is usable.
func (r *SceneRelay) Connected() bool {
	return r != nil && r.conn != nil && r.conn.IsConnected()
}

// Subscribe calls handler with every scene published for sessionID until
// the returned function is called.
func (r *SceneRelay) Subscribe(sessionID string, handler func(data []byte)) (func(), error) {
	sub, err := r.conn.Subscribe(SceneSubject(sessionID), func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe scene %s: %w", sessionID, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}
