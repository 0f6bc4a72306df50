package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vetorre/curator/internal/model"
)

// PostgresToolRepo はPostgreSQLを使用したツールリポジトリ。
// アプリ内のcamelCaseフィールドとDBのsnake_case列の変換はこの層で行う。
type PostgresToolRepo struct {
	db *sql.DB
}

// NewPostgresToolRepo はPostgresToolRepoを生成する。
func NewPostgresToolRepo(db *sql.DB) *PostgresToolRepo {
	return &PostgresToolRepo{db: db}
}

const toolColumns = `id, name, description, category, tags, price, website, image_url,
	        features, use_cases, pros, cons, how_to_use, created_at, updated_at`

// scanTool は1行分のツールレコードを読み取る。
func scanTool(scan func(dest ...any) error) (*model.Tool, error) {
	tool := &model.Tool{}
	var tags, features, useCases, pros, cons pq.StringArray

	err := scan(
		&tool.ID, &tool.Name, &tool.Description, &tool.Category,
		&tags, &tool.Price, &tool.Website, &tool.ImageURL,
		&features, &useCases, &pros, &cons, &tool.HowToUse,
		&tool.CreatedAt, &tool.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tool.Tags = tags
	tool.Features = features
	tool.UseCases = useCases
	tool.Pros = pros
	tool.Cons = cons

	return tool, nil
}

// ListAll は全ツールをcreated_at降順で取得する。
func (r *PostgresToolRepo) ListAll(ctx context.Context) ([]*model.Tool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+toolColumns+` FROM tools ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ツール一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var tools []*model.Tool
	for rows.Next() {
		tool, err := scanTool(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("ツール行の読み取りに失敗しました: %w", err)
		}
		tools = append(tools, tool)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ツール一覧の走査に失敗しました: %w", err)
	}

	return tools, nil
}

// FindByID は指定IDのツールを取得する。見つからない場合はnilを返す。
func (r *PostgresToolRepo) FindByID(ctx context.Context, id string) (*model.Tool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE id = $1`, id,
	)

	tool, err := scanTool(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ツールの取得に失敗しました: %w", err)
	}

	return tool, nil
}

// Create はツールを作成する。IDが空の場合はUUIDを採番してレコードに書き戻す。
func (r *PostgresToolRepo) Create(ctx context.Context, tool *model.Tool) error {
	if tool.ID == "" {
		tool.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tool.CreatedAt = now
	tool.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tools (id, name, description, category, tags, price, website,
		                    image_url, features, use_cases, pros, cons, how_to_use,
		                    created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		tool.ID, tool.Name, tool.Description, tool.Category,
		pq.Array(tool.Tags), tool.Price, tool.Website, tool.ImageURL,
		pq.Array(tool.Features), pq.Array(tool.UseCases),
		pq.Array(tool.Pros), pq.Array(tool.Cons), tool.HowToUse,
		tool.CreatedAt, tool.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ツールの作成に失敗しました: %w", err)
	}
	return nil
}

// Update は指定IDのツールを更新する。
// id列とcreated_at列は更新対象に含めない（ストア採番値の上書き防止）。
func (r *PostgresToolRepo) Update(ctx context.Context, id string, tool *model.Tool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tools SET
		    name = $2, description = $3, category = $4, tags = $5,
		    price = $6, website = $7, image_url = $8,
		    features = $9, use_cases = $10, pros = $11, cons = $12,
		    how_to_use = $13, updated_at = now()
		 WHERE id = $1`,
		id, tool.Name, tool.Description, tool.Category, pq.Array(tool.Tags),
		tool.Price, tool.Website, tool.ImageURL,
		pq.Array(tool.Features), pq.Array(tool.UseCases),
		pq.Array(tool.Pros), pq.Array(tool.Cons), tool.HowToUse,
	)
	if err != nil {
		return fmt.Errorf("ツールの更新に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if affected == 0 {
		return model.NewNotFoundError("ツール", id)
	}

	return nil
}

// Delete は指定IDのツールを削除する。
func (r *PostgresToolRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tools WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ツールの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ToolRepository = (*PostgresToolRepo)(nil)
