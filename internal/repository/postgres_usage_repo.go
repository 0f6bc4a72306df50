package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresUsageCounterStore はPostgreSQLを使用した利用回数カウンタストア。
// 1ユーザー・1日あたりの生成回数を原子的に加算する。
type PostgresUsageCounterStore struct {
	db *sql.DB
}

// NewPostgresUsageCounterStore はPostgresUsageCounterStoreを生成する。
func NewPostgresUsageCounterStore(db *sql.DB) *PostgresUsageCounterStore {
	return &PostgresUsageCounterStore{db: db}
}

// IncrementWithCeiling は上限未満の場合のみカウントを1加算する。
// 加算できた場合はtrueを、上限到達済みの場合はfalseを返す。
// INSERT ... ON CONFLICTにより判定と加算は単一文で行われ、
// 同時リクエストが上限を超えて加算することはない。
func (s *PostgresUsageCounterStore) IncrementWithCeiling(ctx context.Context, userID, day string, ceiling int) (bool, error) {
	var count int

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO usage_counters (user_id, day, count, updated_at)
		 VALUES ($1, $2, 1, now())
		 ON CONFLICT (user_id, day) DO UPDATE
		   SET count = usage_counters.count + 1, updated_at = now()
		   WHERE usage_counters.count < $3
		 RETURNING count`,
		userID, day, ceiling,
	).Scan(&count)

	if err == sql.ErrNoRows {
		// WHERE句が不成立: 上限到達済み
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("利用回数の加算に失敗しました: %w", err)
	}

	return true, nil
}

// CurrentCount は指定日の利用回数を返す。記録がない場合は0を返す。
func (s *PostgresUsageCounterStore) CurrentCount(ctx context.Context, userID, day string) (int, error) {
	var count int

	err := s.db.QueryRowContext(ctx,
		`SELECT count FROM usage_counters WHERE user_id = $1 AND day = $2`,
		userID, day,
	).Scan(&count)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("利用回数の取得に失敗しました: %w", err)
	}

	return count, nil
}

// compile-time interface check
var _ UsageCounterStore = (*PostgresUsageCounterStore)(nil)
