package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"physician-service/internal/core/cache"
	"physician-service/internal/domain"
)

type WriteService struct {
	repo      domain.PhysicianRepository
	validator *Validator
	cache     *cache.Cache // 可为 nil；更新后失效对应 key
	t         Timeouts
	log       *zap.Logger
}

type WriteOption func(*WriteService)

func WithCacheEviction(c *cache.Cache) WriteOption {
	return func(s *WriteService) { s.cache = c }
}

func NewWriteService(repo domain.PhysicianRepository, v *Validator, t Timeouts, log *zap.Logger, opts ...WriteOption) *WriteService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &WriteService{repo: repo, validator: v, t: t, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create 校验 -> email 唯一性 -> 单事务持久化。
// 检查与插入之间的竞争由唯一索引兜底，冲突同样返回 EmailExists。
func (s *WriteService) Create(ctx context.Context, candidate domain.Physician) (CreateResult, error) {
	if vs := s.validator.Validate(&candidate); len(vs) > 0 {
		s.log.Debug("create rejected", zap.Int("violations", len(vs)))
		writeOutcomes.WithLabelValues("create", "violations").Inc()
		return ConstraintViolations{Violations: vs}, nil
	}

	exists, err := withTimeout(ctx, s.t.Short, "email exists", func(ctx context.Context) (bool, error) {
		return s.repo.EmailExists(ctx, candidate.Email)
	})
	if err != nil {
		return nil, err
	}
	if exists {
		writeOutcomes.WithLabelValues("create", "email_exists").Inc()
		return EmailExists{Email: candidate.Email}, nil
	}

	_, err = withTimeout(ctx, s.t.Short, "create", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Create(ctx, &candidate)
	})
	if errors.Is(err, domain.ErrEmailConflict) {
		s.log.Info("email taken concurrently", zap.String("email", candidate.Email))
		writeOutcomes.WithLabelValues("create", "email_exists").Inc()
		return EmailExists{Email: candidate.Email}, nil
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("physician created", zap.String("id", candidate.ID.String()))
	writeOutcomes.WithLabelValues("create", "created").Inc()
	return Created{Physician: candidate}, nil
}

// Update 校验 -> 加载 -> email 变更时查重 -> 乐观锁更新。
// 期望版本取 candidate.Version，为 domain.AnyVersion 时用已加载记录的版本。
// 版本冲突以 domain.ErrVersionConflict 错误返回。
func (s *WriteService) Update(ctx context.Context, candidate domain.Physician, id uuid.UUID) (UpdateResult, error) {
	if vs := s.validator.Validate(&candidate); len(vs) > 0 {
		writeOutcomes.WithLabelValues("update", "violations").Inc()
		return ConstraintViolations{Violations: vs}, nil
	}

	existing, err := withTimeout(ctx, s.t.Short, "find by id", func(ctx context.Context) (*domain.Physician, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		writeOutcomes.WithLabelValues("update", "not_found").Inc()
		return NotFound{ID: id}, nil
	}

	if candidate.Email != existing.Email {
		exists, err := withTimeout(ctx, s.t.Short, "email exists", func(ctx context.Context) (bool, error) {
			return s.repo.EmailExists(ctx, candidate.Email)
		})
		if err != nil {
			return nil, err
		}
		if exists {
			writeOutcomes.WithLabelValues("update", "email_exists").Inc()
			return EmailExists{Email: candidate.Email}, nil
		}
	}

	next := merge(existing, candidate)
	_, err = withTimeout(ctx, s.t.Short, "update", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Update(ctx, &next)
	})
	if errors.Is(err, domain.ErrEmailConflict) {
		writeOutcomes.WithLabelValues("update", "email_exists").Inc()
		return EmailExists{Email: candidate.Email}, nil
	}
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			writeOutcomes.WithLabelValues("update", "version_conflict").Inc()
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
			s.log.Warn("cache evict failed", zap.String("id", id.String()), zap.Error(err))
		}
	}
	s.log.Info("physician updated", zap.String("id", id.String()), zap.Int("version", next.Version))
	writeOutcomes.WithLabelValues("update", "updated").Inc()
	return Updated{Physician: next}, nil
}

// merge 以已有记录为底：id、创建时间与值对象 id 不可变，其余字段取自 candidate
func merge(existing *domain.Physician, c domain.Physician) domain.Physician {
	next := c
	next.ID = existing.ID
	next.CreatedAt = existing.CreatedAt
	next.UpdatedAt = existing.UpdatedAt
	if next.Version == domain.AnyVersion {
		next.Version = existing.Version
	}
	next.Address.ID = existing.Address.ID
	if c.Revenue != nil {
		rev := *c.Revenue
		rev.ID = uuid.Nil
		if existing.Revenue != nil {
			rev.ID = existing.Revenue.ID
		}
		next.Revenue = &rev
	}
	return next
}
