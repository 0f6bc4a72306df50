package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetorre/curator/internal/model"
)

// PostgresNewsRepo はPostgreSQLを使用したニュースリポジトリ。
type PostgresNewsRepo struct {
	db *sql.DB
}

// NewPostgresNewsRepo はPostgresNewsRepoを生成する。
func NewPostgresNewsRepo(db *sql.DB) *PostgresNewsRepo {
	return &PostgresNewsRepo{db: db}
}

const newsColumns = `id, title, description, content, source, category, image_url,
	        date, created_at, updated_at`

// scanNews は1行分のニュースレコードを読み取る。
func scanNews(scan func(dest ...any) error) (*model.News, error) {
	article := &model.News{}
	err := scan(
		&article.ID, &article.Title, &article.Description, &article.Content,
		&article.Source, &article.Category, &article.ImageURL,
		&article.Date, &article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return article, nil
}

// ListAll は全記事をdate降順で取得する。
func (r *PostgresNewsRepo) ListAll(ctx context.Context) ([]*model.News, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+newsColumns+` FROM news ORDER BY date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ニュース一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var articles []*model.News
	for rows.Next() {
		article, err := scanNews(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("ニュース行の読み取りに失敗しました: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ニュース一覧の走査に失敗しました: %w", err)
	}

	return articles, nil
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresNewsRepo) FindByID(ctx context.Context, id string) (*model.News, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+newsColumns+` FROM news WHERE id = $1`, id,
	)

	article, err := scanNews(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ニュースの取得に失敗しました: %w", err)
	}

	return article, nil
}

// Create は記事を作成する。IDが空の場合はUUIDを採番してレコードに書き戻す。
func (r *PostgresNewsRepo) Create(ctx context.Context, article *model.News) error {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO news (id, title, description, content, source, category,
		                   image_url, date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		article.ID, article.Title, article.Description, article.Content,
		article.Source, article.Category, article.ImageURL, article.Date,
		article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ニュースの作成に失敗しました: %w", err)
	}
	return nil
}

// Update は指定IDの記事を更新する。
// id列・created_at列・date列は更新対象に含めない（採番値の上書き防止）。
func (r *PostgresNewsRepo) Update(ctx context.Context, id string, article *model.News) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE news SET
		    title = $2, description = $3, content = $4, source = $5,
		    category = $6, image_url = $7, updated_at = now()
		 WHERE id = $1`,
		id, article.Title, article.Description, article.Content,
		article.Source, article.Category, article.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("ニュースの更新に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if affected == 0 {
		return model.NewNotFoundError("ニュース", id)
	}

	return nil
}

// Delete は指定IDの記事を削除する。
func (r *PostgresNewsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ニュースの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ NewsRepository = (*PostgresNewsRepo)(nil)
