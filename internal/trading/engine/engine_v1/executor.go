package engine_v1

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-meanrev/internal/logger"
	"github.com/rxtech-lab/argo-meanrev/internal/strategy/meanreversion"
	tradingprovider "github.com/rxtech-lab/argo-meanrev/internal/trading/provider"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"go.uber.org/zap"
)

// Executor hands a market's actions to the venue in order. It does not wait for
// fills; an acknowledgement is all it records.
type Executor struct {
	private tradingprovider.ExchangePrivateClient
	dryRun  bool
	log     *logger.Logger
	now     func() time.Time
}

// NewExecutor creates an executor. In dry-run mode actions are logged and journaled only.
func NewExecutor(private tradingprovider.ExchangePrivateClient, dryRun bool, log *logger.Logger) *Executor {
	return &Executor{
		private: private,
		dryRun:  dryRun,
		log:     log,
		now:     time.Now,
	}
}

// Execute runs actions in order and returns one record per action.
// It stops at the first failure: that action is recorded as rejected and every
// later one as skipped, so a stop-loss sell is never sent after a failed cancel.
func (x *Executor) Execute(ctx context.Context, cycleID string, actions []types.OrderAction) ([]types.ActionRecord, error) {
	at := x.now()

	records := make([]types.ActionRecord, len(actions))
	for i, action := range actions {
		records[i] = types.NewActionRecord(cycleID, i, action, at)
	}

	if err := meanreversion.ValidatePlan(actions); err != nil {
		return records, err
	}

	for i, action := range actions {
		log := x.log.With(
			zap.String("symbol", action.Symbol),
			zap.String("cycle_id", cycleID),
			zap.String("reason", string(action.Reason)),
		)

		if x.dryRun {
			records[i].Status = types.ActionStatusDryRun
			log.Info("Dry run, action not sent", zap.String("action", action.String()))

			continue
		}

		ack, err := x.execute(ctx, action)
		if err != nil {
			records[i].Status = types.ActionStatusRejected
			records[i].Error = err.Error()
			log.Warn("Action rejected", zap.String("action", action.String()), zap.Error(err))

			return records, err
		}

		records[i].Status = types.ActionStatusSubmitted
		if ack.OrderID != "" {
			records[i].OrderID = ack.OrderID
		}

		log.Info("Action acknowledged",
			zap.String("action", action.String()),
			zap.String("order_id", ack.OrderID),
			zap.String("status", ack.Status),
		)
	}

	return records, nil
}

func (x *Executor) execute(ctx context.Context, action types.OrderAction) (types.Ack, error) {
	switch action.Kind {
	case types.ActionKindPlace:
		return callWithTimeout(ctx, func(c context.Context) (types.Ack, error) {
			return x.private.CreateOrder(c, action.Params)
		})
	case types.ActionKindCancel:
		return callWithTimeout(ctx, func(c context.Context) (types.Ack, error) {
			return x.private.CancelOrder(c, action.Symbol, action.OrderID)
		})
	default:
		return types.Ack{}, errors.Newf(errors.ErrCodeInvalidParameter, "unknown action kind %q", action.Kind) //nolint:exhaustruct // error path
	}
}
