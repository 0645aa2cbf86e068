package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
)

type stubNotifier struct {
	err    error
	events []domain.StatusChanged
}

func (s *stubNotifier) Notify(_ context.Context, event domain.StatusChanged) error {
	s.events = append(s.events, event)
	return s.err
}

func sampleEvent() domain.StatusChanged {
	return domain.StatusChanged{
		EventID:   "evt-1",
		OrderID:   12,
		StoreID:   3,
		OldStatus: domain.StatusPacking,
		NewStatus: domain.StatusShipping,
		Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestDeliverStatusChange(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "delivers", wantErr: false},
		{name: "propagates failure for retry", err: errors.New("broker down"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testSuite := &testsuite.WorkflowTestSuite{}
			env := testSuite.NewTestActivityEnvironment()
			notifier := &stubNotifier{err: tt.err}
			act := NewActivities(notifier)
			env.RegisterActivity(act.DeliverStatusChange)

			_, err := env.ExecuteActivity(act.DeliverStatusChange, sampleEvent())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Len(t, notifier.events, 1)
			assert.Equal(t, int64(12), notifier.events[0].OrderID)
			assert.Equal(t, domain.StatusShipping, notifier.events[0].NewStatus)
		})
	}
}

func TestDeliverStatusChange_NotConfigured(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	act := NewActivities(nil)
	env.RegisterActivity(act.DeliverStatusChange)

	_, err := env.ExecuteActivity(act.DeliverStatusChange, sampleEvent())
	assert.Error(t, err)
}
