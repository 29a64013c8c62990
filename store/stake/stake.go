package stake

import (
	"boostlend/core"
	"boostlend/pkg/number"
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type stake struct {
	Asset      string          `sql:"size:42;PRIMARY_KEY"`
	Account    string          `sql:"size:42;PRIMARY_KEY"`
	Amount     decimal.Decimal `sql:"type:varchar(80)"`
	RewardDebt decimal.Decimal `sql:"type:varchar(80)"`
	UpdatedAt  time.Time
}

func (stake) TableName() string {
	return "stakes"
}

type pool struct {
	Asset             string          `sql:"size:42;PRIMARY_KEY"`
	TotalStaked       decimal.Decimal `sql:"type:varchar(80)"`
	AccRewardPerShare decimal.Decimal `sql:"type:varchar(80)"`
	UpdatedAt         time.Time
}

func (pool) TableName() string {
	return "yield_pools"
}

type lock struct {
	Account     string `sql:"size:42;PRIMARY_KEY"`
	TokenID     uint64 `sql:"unique_index:idx_booster_locks_token"`
	BoosterType uint8
	Action      uint8
	LockedAsset string `sql:"size:42"`
	CreatedAt   time.Time
}

func (lock) TableName() string {
	return "booster_locks"
}

type stakeStore struct {
	db *db.DB
}

// New new stake store
func New(db *db.DB) core.StakeStore {
	return &stakeStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		for _, model := range []interface{}{stake{}, pool{}, lock{}} {
			tx := db.Update().Model(model)
			if err := tx.AutoMigrate(model).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *stakeStore) SaveStake(ctx context.Context, tx *db.DB, d *core.Stake) error {
	return tx.Update().Save(&stake{
		Asset:      d.Asset.Hex(),
		Account:    d.User.Hex(),
		Amount:     number.FromUint256(d.Amount),
		RewardDebt: number.FromUint256(d.RewardDebt),
	}).Error
}

func (s *stakeStore) DeleteStake(ctx context.Context, tx *db.DB, asset, user common.Address) error {
	return tx.Update().Where("asset=? AND account=?", asset.Hex(), user.Hex()).Delete(stake{}).Error
}

func (s *stakeStore) SavePool(ctx context.Context, tx *db.DB, p *core.YieldPool) error {
	return tx.Update().Save(&pool{
		Asset:             p.Asset.Hex(),
		TotalStaked:       number.FromUint256(p.TotalStaked),
		AccRewardPerShare: number.FromUint256(p.AccRewardPerShare),
	}).Error
}

func (s *stakeStore) SaveLock(ctx context.Context, tx *db.DB, l *core.BoosterLock) error {
	return tx.Update().Save(&lock{
		Account:     l.User.Hex(),
		TokenID:     l.TokenID,
		BoosterType: uint8(l.BoosterType),
		Action:      uint8(l.Action),
		LockedAsset: l.LockedAsset.Hex(),
	}).Error
}

func (s *stakeStore) DeleteLock(ctx context.Context, tx *db.DB, user common.Address) error {
	return tx.Update().Where("account=?", user.Hex()).Delete(lock{}).Error
}

func (s *stakeStore) AllStakes(ctx context.Context) ([]*core.Stake, error) {
	var rows []*stake
	if err := s.db.View().Find(&rows).Error; err != nil {
		return nil, err
	}

	var ints number.Uint256Reader
	stakes := make([]*core.Stake, 0, len(rows))
	for _, row := range rows {
		stakes = append(stakes, &core.Stake{
			Asset:      common.HexToAddress(row.Asset),
			User:       common.HexToAddress(row.Account),
			Amount:     ints.Read(row.Amount),
			RewardDebt: ints.Read(row.RewardDebt),
		})
	}

	return stakes, ints.Err()
}

func (s *stakeStore) AllPools(ctx context.Context) ([]*core.YieldPool, error) {
	var rows []*pool
	if err := s.db.View().Find(&rows).Error; err != nil {
		return nil, err
	}

	var ints number.Uint256Reader
	pools := make([]*core.YieldPool, 0, len(rows))
	for _, row := range rows {
		pools = append(pools, &core.YieldPool{
			Asset:             common.HexToAddress(row.Asset),
			TotalStaked:       ints.Read(row.TotalStaked),
			AccRewardPerShare: ints.Read(row.AccRewardPerShare),
		})
	}

	return pools, ints.Err()
}

func (s *stakeStore) AllLocks(ctx context.Context) ([]*core.BoosterLock, error) {
	var rows []*lock
	if err := s.db.View().Find(&rows).Error; err != nil {
		return nil, err
	}

	locks := make([]*core.BoosterLock, 0, len(rows))
	for _, row := range rows {
		locks = append(locks, &core.BoosterLock{
			User:        common.HexToAddress(row.Account),
			TokenID:     row.TokenID,
			BoosterType: core.BoosterType(row.BoosterType),
			Action:      core.BoosterAction(row.Action),
			LockedAsset: common.HexToAddress(row.LockedAsset),
		})
	}

	return locks, nil
}
