package events

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

func TestEmit_NilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(context.Background(), nil, nil, OrderPaid, OrderEvent{OrderID: 1})
	})
}

func TestEmit_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, OrderCanceled, mock.Anything).Return(errors.New("broker down"))

	Emit(context.Background(), pub, log, OrderCanceled, OrderEvent{OrderID: 2})

	pub.AssertExpectations(t)
	assert.Contains(t, buf.String(), "broker down")
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), OrderFinished, nil))
}
