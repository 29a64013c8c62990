package lending

import (
	"boostlend/core"
	"boostlend/pkg/wadray"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// refreshYieldBoost sets the user's stake on asset to debt * multiplier. A
// booster counts only for the asset it was locked against; debt changes on
// other assets leave its stake untouched. When the stake drops to zero the
// pending rewards are paid, the stake is removed and the booster returned.
func (e *Engine) refreshYieldBoost(ctx context.Context, st *State, asset, user common.Address, debt *uint256.Int) error {
	r, ok := st.reserves[asset]
	if !ok || !r.YieldBoost {
		return nil
	}

	lock := st.locks[user]
	if lock != nil && lock.LockedAsset != asset {
		return nil
	}

	multiplier := core.DefaultMultiplier
	if lock != nil {
		multiplier = e.cfg.Multipliers.Of(lock.BoosterType, lock.Action)
	}

	newStake := wadray.PercentMul(debt, multiplier)
	oldStake := new(uint256.Int)
	stake, staked := st.stakes[PositionKey{Asset: asset, User: user}]
	if staked {
		oldStake.Set(stake.Amount)
	}

	if newStake.Eq(oldStake) {
		return nil
	}

	pool := st.mutPool(asset)
	if staked {
		stake = st.mutStake(asset, user)
		if err := e.harvest(ctx, st, pool, stake); err != nil {
			return err
		}
	}

	total := wadray.SubFloor(pool.TotalStaked, oldStake)
	pool.TotalStaked = total.Add(total, newStake)

	ref := core.AssetRef{Asset: asset}
	st.emit(core.RefreshYieldBoostAmount{AssetRef: ref, User: user, Amount: new(uint256.Int).Set(newStake)})

	if !newStake.IsZero() {
		stake = st.mutStake(asset, user)
		stake.Amount = newStake
		stake.RewardDebt = wadray.RayMul(newStake, pool.AccRewardPerShare)
		st.emit(core.StakePositionUpdated{AssetRef: ref, User: user, Amount: new(uint256.Int).Set(newStake)})
		return nil
	}

	if staked {
		st.deleteStake(asset, user)
		st.emit(core.StakePositionRemoved{AssetRef: ref, User: user})
	}

	if lock != nil {
		if err := e.boosters.Unlock(ctx, user, lock.TokenID); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("boosters.Unlock")
			return err
		}
		st.deleteLock(user)
		st.emit(core.UnlockBoosterNFT{
			AssetRef:    ref,
			User:        user,
			TokenID:     lock.TokenID,
			BoosterType: lock.BoosterType,
			Action:      lock.Action,
		})
	}

	return nil
}

func pendingRewards(pool *core.YieldPool, stake *core.Stake) *uint256.Int {
	return wadray.SubFloor(wadray.RayMul(stake.Amount, pool.AccRewardPerShare), stake.RewardDebt)
}

// harvest pays the pending rewards of stake and resets its reward debt
func (e *Engine) harvest(ctx context.Context, st *State, pool *core.YieldPool, stake *core.Stake) error {
	pending := pendingRewards(pool, stake)
	stake.RewardDebt = wadray.RayMul(stake.Amount, pool.AccRewardPerShare)
	if pending.IsZero() || isZeroAddress(e.cfg.RewardAsset) {
		return nil
	}

	if err := e.tokens.Transfer(ctx, e.cfg.RewardAsset, e.cfg.RewardVault, stake.User, pending); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("tokens.Transfer")
		return err
	}

	st.emit(core.RewardsClaimed{
		AssetRef: core.AssetRef{Asset: stake.Asset},
		User:     stake.User,
		Amount:   pending,
	})
	return nil
}

// LockBooster takes booster tokenID of user into custody and couples it to
// the user's debt on asset
func (e *Engine) LockBooster(ctx context.Context, st *State, user common.Address, tokenID uint64, asset common.Address) error {
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"asset":    asset.Hex(),
		"user":     user.Hex(),
		"token_id": tokenID,
	})

	err := e.atomic(st, func() error {
		if isZeroAddress(user, asset) {
			return core.ErrInvalidAddress
		}

		r, err := e.activeReserve(st, asset)
		if err != nil {
			return err
		}

		if !r.YieldBoost {
			return core.ErrYieldBoostDisabled
		}

		if st.UsingBooster(user) {
			return core.ErrBoosterAlreadyLocked
		}

		typ, action, err := e.boosters.Describe(ctx, tokenID)
		if err != nil {
			log.WithError(err).Errorln("boosters.Describe")
			return err
		}

		if err := e.boosters.Lock(ctx, user, tokenID); err != nil {
			return err
		}

		lock := &core.BoosterLock{
			User:        user,
			TokenID:     tokenID,
			BoosterType: typ,
			Action:      action,
			LockedAsset: asset,
		}
		st.putLock(lock)
		st.emit(core.LockBoosterNFT{
			AssetRef:    core.AssetRef{Asset: asset},
			User:        user,
			TokenID:     tokenID,
			BoosterType: typ,
			Action:      action,
		})

		now := e.now()
		debt := variableDebtBalance(st, r, user, NormalizedDebt(r, now))
		debt.Add(debt, e.stableDebtOf(st, asset, user, now))
		return e.refreshYieldBoost(ctx, st, asset, user, debt)
	})

	if err != nil {
		log.WithError(err).Infoln("lending.LockBooster")
	}
	return err
}

// DistributeRewards pulls amount of the reward asset from funder and shares it
// among the stakers of asset pro rata
func (e *Engine) DistributeRewards(ctx context.Context, st *State, asset, funder common.Address, amount *uint256.Int) error {
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"asset":  asset.Hex(),
		"funder": funder.Hex(),
	})

	err := e.atomic(st, func() error {
		if isZeroAddress(asset, funder) {
			return core.ErrInvalidAddress
		}

		if isZeroAddress(e.cfg.RewardAsset) {
			return errRewardsDisabled
		}

		if amount == nil || amount.IsZero() {
			return core.ErrInvalidAmount
		}

		if p, ok := st.pools[asset]; !ok || p.TotalStaked.IsZero() {
			return core.ErrNoStakers
		}

		if err := e.tokens.TransferFrom(ctx, e.cfg.RewardAsset, e.cfg.Address, funder, e.cfg.RewardVault, amount); err != nil {
			return err
		}

		pool := st.mutPool(asset)
		acc := wadray.MulDiv(amount, wadray.Ray, pool.TotalStaked)
		pool.AccRewardPerShare = acc.Add(acc, pool.AccRewardPerShare)

		st.emit(core.RewardsDistributed{
			AssetRef: core.AssetRef{Asset: asset},
			Funder:   funder,
			Amount:   new(uint256.Int).Set(amount),
		})
		return nil
	})

	if err != nil {
		log.WithError(err).Infoln("lending.DistributeRewards")
	}
	return err
}

// ClaimRewards pays the pending rewards of user's stake on asset
func (e *Engine) ClaimRewards(ctx context.Context, st *State, asset, user common.Address) (*uint256.Int, error) {
	var claimed *uint256.Int
	err := e.atomic(st, func() error {
		if isZeroAddress(e.cfg.RewardAsset) {
			return errRewardsDisabled
		}

		claimed = new(uint256.Int)
		if _, ok := st.stakes[PositionKey{Asset: asset, User: user}]; !ok {
			return nil
		}

		pool := st.mutPool(asset)
		stake := st.mutStake(asset, user)
		claimed = pendingRewards(pool, stake)
		return e.harvest(ctx, st, pool, stake)
	})

	if err != nil {
		logger.FromContext(ctx).WithError(err).Infoln("lending.ClaimRewards")
		return nil, err
	}
	return claimed, nil
}

// PendingRewards unclaimed rewards of user on asset
func (e *Engine) PendingRewards(st *State, asset, user common.Address) *uint256.Int {
	stake, ok := st.stakes[PositionKey{Asset: asset, User: user}]
	pool, found := st.pools[asset]
	if !ok || !found {
		return new(uint256.Int)
	}
	return pendingRewards(pool, stake)
}
