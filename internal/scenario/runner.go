package scenario

import (
	"boostlend/core"
	"boostlend/pkg/lending"
	"boostlend/pkg/number"
	"boostlend/service/booster"
	"boostlend/service/token"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"github.com/yiplee/structs"
)

var errAmountRequired = errors.New("scenario: amount required")

// Result outcome of a step
type Result struct {
	Index  int
	Step   Step
	Err    error
	Events []core.Event
	// amount repaid, withdrawn or claimed
	Amount *uint256.Int
}

// Runner executes scenarios against its own state
type Runner struct {
	Engine   *lending.Engine
	State    *lending.State
	Ledger   *token.Ledger
	Registry *booster.Registry
	// spender approved by approve steps
	Protocol common.Address

	now time.Time
}

// Run executes every step in order and reports each result to report. It
// stops at the first step whose outcome differs from its expectation.
func (r *Runner) Run(ctx context.Context, s *Scenario, report func(Result)) error {
	r.now = time.Unix(s.Start, 0)
	r.Engine.SetClock(func() time.Time { return r.now })

	for i, step := range s.Steps {
		log := logger.FromContext(ctx).WithFields(logrus.Fields(structs.Map(step)))
		ctx := logger.WithContext(ctx, log)

		amount, err := r.exec(ctx, step)
		res := Result{
			Index:  i,
			Step:   step,
			Err:    err,
			Events: r.State.Flush().Events,
			Amount: amount,
		}

		if report != nil {
			report(res)
		}

		switch {
		case err != nil && step.Expect == "":
			return fmt.Errorf("step %d %s: %w", i, step.Op, err)
		case err != nil && !strings.Contains(err.Error(), step.Expect):
			return fmt.Errorf("step %d %s: want error %q, got %w", i, step.Op, step.Expect, err)
		case err == nil && step.Expect != "":
			return fmt.Errorf("step %d %s: want error %q", i, step.Op, step.Expect)
		}
	}

	return nil
}

func (r *Runner) exec(ctx context.Context, step Step) (*uint256.Int, error) {
	var amount *uint256.Int
	if step.Amount != "" {
		v, err := number.ParseAmount(step.Amount)
		if err != nil {
			return nil, fmt.Errorf("amount: %w", err)
		}
		amount = v
	}

	switch step.Op {
	case "mint", "approve", "deposit", "withdraw", "borrow", "repay", "distribute":
		if amount == nil {
			return nil, errAmountRequired
		}
	}

	switch step.Op {
	case "advance":
		r.now = r.now.Add(time.Duration(step.Seconds) * time.Second)
		return nil, nil
	case "mint":
		r.Ledger.Mint(step.Asset, step.User, amount)
		return nil, nil
	case "approve":
		r.Ledger.Approve(step.Asset, step.User, r.Protocol, amount)
		return nil, nil
	case "mint_booster":
		return nil, r.Registry.Mint(booster.Token{
			ID:     step.TokenID,
			Owner:  step.User,
			Type:   core.BoosterType(step.Type),
			Action: core.BoosterAction(step.Action),
		})
	case "deposit":
		return nil, r.Engine.Deposit(ctx, r.State, lending.DepositParams{
			Asset:      step.Asset,
			Amount:     amount,
			OnBehalfOf: or(step.OnBehalfOf, step.User),
			Payer:      or(step.Payer, step.User),
		})
	case "withdraw":
		return r.Engine.Withdraw(ctx, r.State, lending.WithdrawParams{
			Asset:  step.Asset,
			Amount: amount,
			User:   step.User,
			To:     or(step.To, step.User),
		})
	case "borrow":
		return nil, r.Engine.Borrow(ctx, r.State, lending.BorrowParams{
			Asset:    step.Asset,
			Amount:   amount,
			RateMode: core.ParseInterestRateMode(step.Mode),
			User:     step.User,
		})
	case "repay":
		return r.Engine.Repay(ctx, r.State, lending.RepayParams{
			Asset:      step.Asset,
			Amount:     amount,
			RateMode:   core.ParseInterestRateMode(step.Mode),
			OnBehalfOf: or(step.OnBehalfOf, step.User),
			Payer:      or(step.Payer, step.User),
		})
	case "lock":
		return nil, r.Engine.LockBooster(ctx, r.State, step.User, step.TokenID, step.Asset)
	case "distribute":
		return nil, r.Engine.DistributeRewards(ctx, r.State, step.Asset, step.User, amount)
	case "claim":
		return r.Engine.ClaimRewards(ctx, r.State, step.Asset, step.User)
	case "accrue":
		return nil, r.Engine.Accrue(ctx, r.State, step.Asset)
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func or(a, b common.Address) common.Address {
	if a == (common.Address{}) {
		return b
	}
	return a
}
