package mqtt

import "log"

// bufferedMsg is a serialized message waiting for the broker.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog holds messages published while the broker is unreachable.
// Past the limit the oldest message is dropped. A retained message
// replaces an earlier retained message on the same topic, since the
// broker would only keep the last one anyway.
// Not safe for concurrent use; the caller synchronizes.
type backlog struct {
	msgs    []bufferedMsg
	limit   int
	dropped int
}

func newBacklog(limit int) *backlog {
	return &backlog{limit: limit}
}

func (b *backlog) add(m bufferedMsg) {
	if m.retained {
		for i, old := range b.msgs {
			if old.retained && old.topic == m.topic {
				b.msgs = append(b.msgs[:i], b.msgs[i+1:]...)
				break
			}
		}
	}
	if len(b.msgs) >= b.limit {
		if b.dropped == 0 {
			log.Printf("mqtt: backlog full (%d messages), dropping oldest", b.limit)
		}
		b.dropped++
		b.msgs = b.msgs[1:]
	}
	b.msgs = append(b.msgs, m)
}

// take returns the held messages oldest first and empties the backlog.
func (b *backlog) take() []bufferedMsg {
	if len(b.msgs) == 0 {
		return nil
	}
	if b.dropped > 0 {
		log.Printf("mqtt: replaying %d held messages, %d dropped", len(b.msgs), b.dropped)
	}
	out := b.msgs
	b.msgs = nil
	b.dropped = 0
	return out
}

func (b *backlog) len() int {
	return len(b.msgs)
}
