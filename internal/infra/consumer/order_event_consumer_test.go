package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	event_handler "github.com/RoyceAzure/lab/storefront/internal/handler/event"
	mock_consumer "github.com/RoyceAzure/lab/storefront/internal/infra/consumer/mock"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func toMessage(t *testing.T, evt evt_model.Event, offset int64) kafka.Message {
	t.Helper()
	value, err := json.Marshal(evt)
	require.NoError(t, err)
	return kafka.Message{
		Key:     []byte(evt.GetAggregateID()),
		Value:   value,
		Offset:  offset,
		Headers: []kafka.Header{{Key: producer.EventTypeHeader, Value: []byte(evt.Type())}},
	}
}

func placedEvent() *evt_model.OrderPlacedEvent {
	return evt_model.NewOrderPlacedEvent(model.Order{
		ID:        "order-7",
		UserEmail: "jo@example.com",
		Items: []model.CartItem{
			{ID: "i1", ProductID: "p1", Quantity: 3, Price: decimal.RequireFromString("9.99"),
				Variant: model.ColorVariant{Name: "Navy", Hex: "#000080", Stock: 4}},
		},
		Total: decimal.RequireFromString("29.97"),
	})
}

func TestTransformData(t *testing.T) {
	c := NewOrderEventConsumer(mock_consumer.NewMockReader(gomock.NewController(t)), event_handler.HandlerFunc(
		func(ctx context.Context, evt evt_model.Event) error { return nil }), nil)

	placed := placedEvent()
	changed := evt_model.NewOrderStatusChangedEvent("order-7", model.OrderStatusShipped, model.OrderStatusDelivered)

	testCases := []struct {
		name       string
		msg        kafka.Message
		expectType evt_model.EventType
		expectErr  bool
	}{
		{name: "order placed", msg: toMessage(t, placed, 1), expectType: evt_model.OrderPlacedEventName},
		{name: "status changed", msg: toMessage(t, changed, 2), expectType: evt_model.OrderStatusChangedEventName},
		{name: "missing header", msg: kafka.Message{Value: []byte(`{}`)}, expectErr: true},
		{name: "unknown type", msg: kafka.Message{Value: []byte(`{}`), Headers: []kafka.Header{{Key: producer.EventTypeHeader, Value: []byte("CartCreated")}}}, expectErr: true},
		{name: "broken json", msg: kafka.Message{Value: []byte(`{`), Headers: []kafka.Header{{Key: producer.EventTypeHeader, Value: []byte(evt_model.OrderPlacedEventName)}}}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			evt, err := c.transformData(tc.msg)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectType, evt.Type())
		})
	}

	evt, err := c.transformData(toMessage(t, placed, 1))
	require.NoError(t, err)
	decoded := evt.(*evt_model.OrderPlacedEvent)
	require.Equal(t, placed.EventID, decoded.GetID())
	require.Equal(t, placed.Items[0].Variant, decoded.Items[0].Variant)
	require.True(t, placed.Total.Equal(decoded.Total))
}

func TestOrderEventConsumerHandlesAndCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mock_consumer.NewMockReader(ctrl)

	incoming := make(chan kafka.Message, 3)
	incoming <- toMessage(t, placedEvent(), 10)
	incoming <- kafka.Message{Offset: 11, Value: []byte("garbage")}
	incoming <- toMessage(t, evt_model.NewOrderStatusChangedEvent("order-7", model.OrderStatusPending, model.OrderStatusShipped), 12)

	reader.EXPECT().FetchMessage(gomock.Any()).DoAndReturn(func(ctx context.Context) (kafka.Message, error) {
		select {
		case msg := <-incoming:
			return msg, nil
		case <-ctx.Done():
			return kafka.Message{}, ctx.Err()
		}
	}).AnyTimes()

	committed := make(chan int64, 3)
	reader.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, msgs ...kafka.Message) error {
		for _, m := range msgs {
			committed <- m.Offset
		}
		return nil
	}).Times(3)
	reader.EXPECT().Close().Return(nil).Times(1)

	handled := make(chan evt_model.EventType, 2)
	handler := event_handler.HandlerFunc(func(ctx context.Context, evt evt_model.Event) error {
		handled <- evt.Type()
		return nil
	})

	c := NewOrderEventConsumer(reader, handler, nil)
	require.NoError(t, c.Start(context.Background()))
	require.ErrorIs(t, c.Start(context.Background()), ErrConsumerRunning)

	offsets := []int64{}
	for len(offsets) < 3 {
		select {
		case off := <-committed:
			offsets = append(offsets, off)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, committed %v", offsets)
		}
	}
	require.Equal(t, []int64{10, 11, 12}, offsets)
	require.Equal(t, evt_model.OrderPlacedEventName, <-handled)
	require.Equal(t, evt_model.OrderStatusChangedEventName, <-handled)

	require.NoError(t, c.Stop(time.Second))
	require.NoError(t, c.Stop(time.Second))
	require.ErrorIs(t, c.Start(context.Background()), ErrConsumerClosed)
}

func TestOrderEventConsumerFinishesInFlightMessageAfterCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mock_consumer.NewMockReader(ctrl)

	incoming := make(chan kafka.Message, 1)
	incoming <- toMessage(t, placedEvent(), 20)

	reader.EXPECT().FetchMessage(gomock.Any()).DoAndReturn(func(ctx context.Context) (kafka.Message, error) {
		select {
		case msg := <-incoming:
			return msg, nil
		case <-ctx.Done():
			return kafka.Message{}, ctx.Err()
		}
	}).AnyTimes()

	commitCtxErr := make(chan error, 1)
	reader.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, msgs ...kafka.Message) error {
		require.Len(t, msgs, 1)
		require.Equal(t, int64(20), msgs[0].Offset)
		commitCtxErr <- ctx.Err()
		return nil
	}).Times(1)
	reader.EXPECT().Close().Return(nil).Times(1)

	started := make(chan struct{})
	release := make(chan struct{})
	handlerCtxErr := make(chan error, 1)
	handler := event_handler.HandlerFunc(func(ctx context.Context, evt evt_model.Event) error {
		close(started)
		<-release
		handlerCtxErr <- ctx.Err()
		return nil
	})

	parent, cancel := context.WithCancel(context.Background())
	c := NewOrderEventConsumer(reader, handler, nil)
	require.NoError(t, c.Start(parent))

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("handler not invoked")
	}
	// 處理途中停止
	cancel()
	close(release)

	select {
	case err := <-handlerCtxErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not finish")
	}
	select {
	case err := <-commitCtxErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight message was not committed")
	}

	require.NoError(t, c.Stop(time.Second))
}
