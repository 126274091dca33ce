package service

import (
	"context"
	"errors"
	"fmt"

	"noticias/internal/auth"
	"noticias/internal/repository"
	"noticias/pkg/async"
	"noticias/pkg/logger"
)

// MigrationReport 凭据迁移结果
type MigrationReport struct {
	Scanned  int
	Upgraded int
	Skipped  int
	Failed   int
}

// CredentialMigrator 将明文密码批量转换为 bcrypt 哈希
type CredentialMigrator struct {
	userRepo    repository.UserRepository
	logger      *logger.Logger
	concurrency int
	hash        func(string) (string, error)
}

// NewCredentialMigrator 创建凭据迁移器，concurrency 为并行哈希的协程数
func NewCredentialMigrator(userRepo repository.UserRepository, logger *logger.Logger, concurrency int) *CredentialMigrator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &CredentialMigrator{
		userRepo:    userRepo,
		logger:      logger,
		concurrency: concurrency,
		hash:        auth.HashPassword,
	}
}

// Run 扫描全部用户并升级明文凭据；已是哈希的记录保持不变
func (m *CredentialMigrator) Run(ctx context.Context) (*MigrationReport, error) {
	users, err := m.userRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &MigrationReport{Scanned: len(users)}

	worker := async.NewWorker(ctx, m.concurrency, m.logger)
	worker.Start(m.concurrency)

	for _, u := range users {
		if _, legacy := auth.ParseCredential(u.Credential).(auth.Plaintext); !legacy {
			continue
		}

		id, plain := u.ID, u.Credential
		task := async.Task{
			ID:       fmt.Sprintf("rehash_%d", id),
			RetryMax: 1,
			Handler: func(ctx context.Context) error {
				hash, err := m.hash(plain)
				if err != nil {
					return err
				}
				return m.userRepo.UpdateCredential(ctx, id, plain, hash)
			},
		}
		if err := worker.AddTask(task); err != nil {
			worker.Stop()
			return nil, err
		}
	}
	worker.Stop()

	for _, result := range worker.Results() {
		switch {
		case result.Completed:
			report.Upgraded++
		case errors.Is(result.Error, repository.ErrUserNotFound):
			// 凭据在迁移期间已被修改
			report.Skipped++
		default:
			report.Failed++
		}
	}

	m.logger.Info("凭据迁移完成", "scanned", report.Scanned, "upgraded", report.Upgraded, "skipped", report.Skipped, "failed", report.Failed)

	if report.Failed > 0 {
		return report, fmt.Errorf("%d credentials could not be upgraded", report.Failed)
	}
	return report, ctx.Err()
}
