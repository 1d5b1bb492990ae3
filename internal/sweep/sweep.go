// Package sweep releases holds and checkouts whose window has lapsed.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/clock"
	"github.com/MrJamesThe3rd/consignd/internal/hold"
)

//go:generate mockgen -source=sweep.go -destination=sweep_mock.go -package=sweep
type Finder interface {
	ExpiredOrders(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
	ExpiredHolds(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
}

type Releaser interface {
	Release(ctx context.Context, in hold.ReleaseInput) (hold.ReleaseResult, error)
}

type Result struct {
	ReleasedHolds   int
	CancelledOrders int
	Failed          int
}

type Sweeper struct {
	finder    Finder
	releaser  Releaser
	clock     clock.Clock
	batchSize int
}

func NewSweeper(finder Finder, releaser Releaser, clk clock.Clock, batchSize int) *Sweeper {
	if batchSize <= 0 {
		batchSize = 500
	}

	return &Sweeper{finder: finder, releaser: releaser, clock: clk, batchSize: batchSize}
}

// Sweep releases every PENDING order past its checkout expiry, then every
// remaining hold past held_until. Batches are fetched until the backlog is
// drained. Each release re-checks expiry under its row locks, so a
// concurrent extension wins. A failing item is logged and counted without
// stopping the batch.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	var result Result

	now := s.clock.Now()

	err := s.drain(ctx, &result, now, s.finder.ExpiredOrders, func(id uuid.UUID) hold.ReleaseInput {
		return hold.ReleaseInput{OrderID: id}
	})
	if err != nil {
		return result, fmt.Errorf("finding expired orders: %w", err)
	}

	err = s.drain(ctx, &result, now, s.finder.ExpiredHolds, func(id uuid.UUID) hold.ReleaseInput {
		return hold.ReleaseInput{ListingID: id}
	})
	if err != nil {
		return result, fmt.Errorf("finding expired holds: %w", err)
	}

	if result.ReleasedHolds > 0 || result.Failed > 0 {
		slog.Info("sweep finished",
			"released_holds", result.ReleasedHolds,
			"cancelled_orders", result.CancelledOrders,
			"failed", result.Failed)
	}

	return result, nil
}

type findFunc func(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)

// drain releases batches until find returns a short batch. Failed items come
// back in later batches; a batch with nothing new ends the loop.
func (s *Sweeper) drain(ctx context.Context, result *Result, now time.Time, find findFunc, input func(uuid.UUID) hold.ReleaseInput) error {
	seen := make(map[uuid.UUID]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ids, err := find(ctx, now, s.batchSize)
		if err != nil {
			return err
		}

		fresh := 0

		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}

			seen[id] = struct{}{}
			fresh++

			s.release(ctx, result, input(id))
		}

		if len(ids) < s.batchSize || fresh == 0 {
			return nil
		}
	}
}

func (s *Sweeper) release(ctx context.Context, result *Result, in hold.ReleaseInput) {
	in.Reason = hold.ReasonSystemSweep
	in.Actor = hold.ActorSystem
	in.OnlyIfExpired = true

	res, err := s.releaser.Release(ctx, in)
	if err != nil {
		if errors.Is(err, hold.ErrNotFound) {
			return
		}

		result.Failed++
		slog.Error("failed to release expired hold",
			"order_id", in.OrderID, "listing_id", in.ListingID, "error", err)

		return
	}

	result.ReleasedHolds += res.ListingsReleased
	if res.OrderCancelled {
		result.CancelledOrders++
	}
}
