package sweep_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/consignd/internal/clock"
	"github.com/MrJamesThe3rd/consignd/internal/lock"
	"github.com/MrJamesThe3rd/consignd/internal/sweep"
)

type failingGate struct{}

func (failingGate) TryAcquire(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func expectEmptySweep(f *sweep.MockFinder, times int) {
	f.EXPECT().ExpiredOrders(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(times)
	f.EXPECT().ExpiredHolds(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(times)
}

func TestRunner_SweepIfDue_Throttles(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clk := clock.NewManual(t0)
	finder := sweep.NewMockFinder(ctrl)
	expectEmptySweep(finder, 2)

	s := sweep.NewSweeper(finder, sweep.NewMockReleaser(ctrl), clk, 100)
	r := sweep.NewRunner(s, lock.NewLocalWithClock(clk.Now), time.Minute, 30*time.Second)

	r.SweepIfDue(context.Background())
	r.SweepIfDue(context.Background())

	clk.Advance(31 * time.Second)

	r.SweepIfDue(context.Background())
}

func TestRunner_SweepIfDue_GateDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	finder := sweep.NewMockFinder(ctrl)
	expectEmptySweep(finder, 1)

	s := sweep.NewSweeper(finder, sweep.NewMockReleaser(ctrl), clock.NewManual(t0), 100)
	r := sweep.NewRunner(s, failingGate{}, time.Minute, 30*time.Second)

	r.SweepIfDue(context.Background())
}

func TestRunner_Run_StopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	finder := sweep.NewMockFinder(ctrl)
	finder.EXPECT().ExpiredOrders(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	finder.EXPECT().ExpiredHolds(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	s := sweep.NewSweeper(finder, sweep.NewMockReleaser(ctrl), clock.NewSystem(), 100)
	r := sweep.NewRunner(s, lock.NewLocal(), 5*time.Millisecond, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})

	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		assert.Fail(t, "runner did not stop")
	}
}
