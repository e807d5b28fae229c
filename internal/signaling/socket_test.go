package signaling

import (
	"encoding/json"
	"testing"
)

func TestSocket_EmitQueuesEnvelope(t *testing.T) {
	s := NewSocket("sock-1", 1, "DOCTOR", nil, 4)

	s.Emit(EventPeerLeft, PeerLeft{SocketID: "sock-2"})

	select {
	case msg := <-s.Outbox():
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if env.Event != EventPeerLeft {
			t.Fatalf("expected %q, got %q", EventPeerLeft, env.Event)
		}
	default:
		t.Fatal("expected a queued envelope")
	}
}

func TestSocket_EmitDropsWhenBufferFull(t *testing.T) {
	s := NewSocket("sock-1", 1, "DOCTOR", nil, 1)

	// First fills the buffer, second must be dropped without blocking.
	s.Emit(EventPeerLeft, PeerLeft{SocketID: "a"})
	s.Emit(EventPeerLeft, PeerLeft{SocketID: "b"})

	<-s.Outbox()
	select {
	case msg := <-s.Outbox():
		t.Fatalf("second emit should have been dropped, got %s", msg)
	default:
	}
}

func TestSocket_AckRequiresID(t *testing.T) {
	s := NewSocket("sock-1", 1, "DOCTOR", nil, 4)

	s.Ack("", JoinAck{OK: true})
	select {
	case msg := <-s.Outbox():
		t.Fatalf("ack without id should be skipped, got %s", msg)
	default:
	}

	s.Ack("a1", JoinAck{OK: true, Participants: 1, Role: RoleDoctor})
	select {
	case msg := <-s.Outbox():
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if env.Event != EventAck || env.AckID != "a1" {
			t.Fatalf("unexpected ack envelope %+v", env)
		}
	default:
		t.Fatal("expected an ack envelope")
	}
}

func TestSocket_CloseSendIsIdempotent(t *testing.T) {
	s := NewSocket("sock-1", 1, "DOCTOR", nil, 4)

	s.CloseSend()
	s.CloseSend() // must not panic

	if _, ok := <-s.Outbox(); ok {
		t.Fatal("outbox should be closed")
	}
}
