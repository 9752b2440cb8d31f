package wmediumd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunRegistersBeforeReceiving(t *testing.T) {
	topo, err := NewTopology(TopologyConfig{Addresses: []Address{addrA, addrB}, Rates: 1, Loss: [][]float64{{0, 0, 0, 0}}})
	require.NoError(t, err)

	link := NewFakeDriverLink()
	medium := NewMedium(topo, NewFixedRandomSource([]float64{0}), link, &Metrics{}, testLogger{t})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- medium.Run(ctx) }()

	require.Eventually(t, link.Registered, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("medium.Run did not return after context cancellation")
	}
}

func TestRunProcessesEnqueuedFrames(t *testing.T) {
	topo, err := NewTopology(TopologyConfig{Addresses: []Address{addrA, addrB}, Rates: 1, Loss: [][]float64{{0, 0, 0, 0}}})
	require.NoError(t, err)

	link := NewFakeDriverLink()
	medium := NewMedium(topo, NewFixedRandomSource([]float64{0}), link, &Metrics{}, testLogger{t})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- medium.Run(ctx) }()

	link.Enqueue(&TXFrameRequest{
		Src:      addrA,
		Frame:    dataFrameTo(addrB),
		Schedule: schedule(ScheduleEntry{RateIdx: 0, MaxAttempts: 1}),
	})

	require.Eventually(t, func() bool { return len(link.StatusEvents) == 1 }, time.Second, time.Millisecond)
	require.Len(t, link.RXEvents, 1)
	require.Equal(t, addrB, link.RXEvents[0].Dst)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("medium.Run did not return after context cancellation")
	}
}

func TestRunReturnsNilOnContextCancellation(t *testing.T) {
	topo, err := NewTopology(TopologyConfig{Addresses: []Address{addrA, addrB}, Rates: 1, Loss: [][]float64{{0, 0, 0, 0}}})
	require.NoError(t, err)

	link := NewFakeDriverLink()
	medium := NewMedium(topo, NewFixedRandomSource([]float64{0}), link, &Metrics{}, testLogger{t})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err = medium.Run(ctx)
	require.NoError(t, err, "Run must treat context expiry as a clean shutdown, not a failure")
}

func TestRunPropagatesTransportFailure(t *testing.T) {
	topo, err := NewTopology(TopologyConfig{Addresses: []Address{addrA, addrB}, Rates: 1, Loss: [][]float64{{0, 0, 0, 0}}})
	require.NoError(t, err)

	link := NewFakeDriverLink()
	medium := NewMedium(topo, NewFixedRandomSource([]float64{0}), link, &Metrics{}, testLogger{t})

	require.NoError(t, link.Close())

	err = medium.Run(context.Background())
	require.ErrorIs(t, err, errFakeDriverLinkClosed)
}
