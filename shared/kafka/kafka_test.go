package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

type payload struct {
	Name string `json:"name"`
}

func TestTypedMessageHandler(t *testing.T) {
	var seen []string
	h := &TypedMessageHandler[payload]{
		Validate: func(msg *payload) bool { return msg.Name != "" },
		Process: func(_ context.Context, msg *payload) error {
			if msg.Name == "explode" {
				return errors.New("boom")
			}
			seen = append(seen, msg.Name)
			return nil
		},
		AlwaysMark: true,
	}

	cases := []struct {
		name     string
		body     string
		wantMark bool
		wantErr  bool
	}{
		{"valid", `{"name":"extract"}`, true, false},
		{"garbage", `{not json`, true, false},
		{"invalid", `{"name":""}`, true, false},
		{"process error", `{"name":"explode"}`, false, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mark, err := h.HandleMessage(context.Background(), []byte(c.body))
			if mark != c.wantMark || (err != nil) != c.wantErr {
				t.Fatalf("HandleMessage(%s) = %v, %v", c.body, mark, err)
			}
		})
	}
	if len(seen) != 1 || seen[0] != "extract" {
		t.Fatalf("processed = %v", seen)
	}
}

func TestProducerPublishJSON(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var p payload
		if err := json.Unmarshal(val, &p); err != nil {
			return err
		}
		if p.Name != "extract" {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerFrom(mock, "caption-tasks")
	if err := p.PublishJSON("job-1", payload{Name: "extract"}); err != nil {
		t.Fatalf("PublishJSON: %v", err)
	}
	if err := p.PublishJSON("job-2", payload{Name: "extract"}); !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected broker error, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}
