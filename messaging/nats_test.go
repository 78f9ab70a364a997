package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gatherly-api/models"

	"github.com/nats-io/nats.go/jetstream"
)

type published struct {
	subject string
	data    []byte
}

type fakeStream struct {
	msgs []published
	err  error
}

func (f *fakeStream) Publish(_ context.Context, subject string, data []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, data: data})
	return &jetstream.PubAck{Stream: StreamName, Sequence: uint64(len(f.msgs))}, nil
}

func TestPublisherSubjects(t *testing.T) {
	stream := &fakeStream{}
	p := NewPublisher(stream)
	ctx := context.Background()

	if err := p.VotingStarted(ctx, models.VotingStartedEvent{PlanID: "p1"}); err != nil {
		t.Fatal(err)
	}
	if err := p.PlanClosed(ctx, models.PlanClosedEvent{PlanID: "p1", VoteCount: 3}); err != nil {
		t.Fatal(err)
	}
	if err := p.PlanCancelled(ctx, models.PlanCancelledEvent{PlanID: "p2"}); err != nil {
		t.Fatal(err)
	}

	want := []string{"plans.p1.voting_started", "plans.p1.closed", "plans.p2.cancelled"}
	if len(stream.msgs) != len(want) {
		t.Fatalf("published %d messages, want %d", len(stream.msgs), len(want))
	}
	for i, subject := range want {
		if stream.msgs[i].subject != subject {
			t.Errorf("message %d subject = %s, want %s", i, stream.msgs[i].subject, subject)
		}
	}

	var closed models.PlanClosedEvent
	if err := json.Unmarshal(stream.msgs[1].data, &closed); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if closed.VoteCount != 3 {
		t.Fatalf("vote_count = %d", closed.VoteCount)
	}
}

func TestPublisherPropagatesErrors(t *testing.T) {
	p := NewPublisher(&fakeStream{err: errors.New("no responders")})
	err := p.PlanClosed(context.Background(), models.PlanClosedEvent{PlanID: "p1", OccurredAt: time.Now()})
	if err == nil {
		t.Fatal("expected publish error")
	}
}
