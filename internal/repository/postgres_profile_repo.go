package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vetorre/curator/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	profile := &model.Profile{}
	var expiresAt sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, role, plan, plan_expires_at, created_at, updated_at
		 FROM profiles WHERE id = $1`,
		id,
	).Scan(
		&profile.ID, &profile.Email, &profile.Role, &profile.Plan,
		&expiresAt, &profile.CreatedAt, &profile.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		profile.PlanExpiresAt = &t
	}

	return profile, nil
}

// Create はプロフィールを作成する。
func (r *PostgresProfileRepo) Create(ctx context.Context, profile *model.Profile) error {
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	var expiresAt sql.NullTime
	if profile.PlanExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *profile.PlanExpiresAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, email, role, plan, plan_expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		profile.ID, profile.Email, profile.Role, profile.Plan,
		expiresAt, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("プロフィールの作成に失敗しました: %w", err)
	}
	return nil
}

// UpdatePlan は指定プロフィールのプランと有効期限のみを更新する。
func (r *PostgresProfileRepo) UpdatePlan(ctx context.Context, id string, plan model.Plan, expiresAt *time.Time) error {
	var nullExpires sql.NullTime
	if expiresAt != nil {
		nullExpires = sql.NullTime{Time: *expiresAt, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET plan = $2, plan_expires_at = $3, updated_at = now()
		 WHERE id = $1`,
		id, plan, nullExpires,
	)
	if err != nil {
		return fmt.Errorf("プランの更新に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if affected == 0 {
		return model.NewNotFoundError("プロフィール", id)
	}

	return nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
