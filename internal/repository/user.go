package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"noticias/internal/model"

	"github.com/jmoiron/sqlx"
)

// UserRepository 用户仓库接口
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	UpdateCredential(ctx context.Context, id int64, old, credential string) error
}

// userRepository 用户仓库实现
type userRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewUserRepository 创建用户仓库实例
func NewUserRepository(db *sqlx.DB, timeout time.Duration) UserRepository {
	return &userRepository{db: db, timeout: timeout}
}

// FindByUsername 根据用户名精确查找用户
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	user := &model.User{}
	query := `SELECT id_usuario, username, contrasenia_hash, is_admin FROM usuarios WHERE username = ?`
	if err := r.db.GetContext(ctx, user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr("find user", err)
	}
	return user, nil
}

// ListAll 列出全部用户，供凭据迁移使用
func (r *userRepository) ListAll(ctx context.Context) ([]model.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	users := []model.User{}
	query := `SELECT id_usuario, username, contrasenia_hash, is_admin FROM usuarios ORDER BY id_usuario`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

// UpdateCredential 仅当凭据仍为 old 时替换，避免覆盖并发修改
func (r *userRepository) UpdateCredential(ctx context.Context, id int64, old, credential string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `UPDATE usuarios SET contrasenia_hash = ? WHERE id_usuario = ? AND contrasenia_hash = ?`
	result, err := r.db.ExecContext(ctx, query, credential, id, old)
	if err != nil {
		return storeErr("update credential", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("update credential", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
