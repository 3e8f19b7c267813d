package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"physician-service/internal/core/cache"
	"physician-service/internal/domain"
)

// Timeouts 两档超时：Short 用于单条查询和写入，Long 用于返回集合的查询
type Timeouts struct {
	Short time.Duration
	Long  time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{Short: 1500 * time.Millisecond, Long: 2000 * time.Millisecond}
}

// errAbsent 缓存回源时表示“不存在”，不写入缓存
var errAbsent = errors.New("physician absent")

func cacheKey(id uuid.UUID) string { return "physician:" + id.String() }

type ReadService struct {
	repo     domain.PhysicianRepository
	qb       *QueryBuilder
	cache    *cache.Cache // 可为 nil
	cacheTTL time.Duration
	t        Timeouts
	log      *zap.Logger
}

type ReadOption func(*ReadService)

// WithCache FindByID 走 redis 读穿缓存
func WithCache(c *cache.Cache, ttl time.Duration) ReadOption {
	return func(s *ReadService) { s.cache, s.cacheTTL = c, ttl }
}

func NewReadService(repo domain.PhysicianRepository, qb *QueryBuilder, t Timeouts, log *zap.Logger, opts ...ReadOption) *ReadService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &ReadService{repo: repo, qb: qb, t: t, log: log, cacheTTL: 5 * time.Minute}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *ReadService) FindByID(ctx context.Context, id uuid.UUID) (FindByIDResult, error) {
	p, err := withTimeout(ctx, s.t.Short, "find by id", func(ctx context.Context) (*domain.Physician, error) {
		if s.cache == nil {
			return s.repo.FindByID(ctx, id)
		}
		p, err := cache.GetOrLoadJSON(s.cache, ctx, cacheKey(id), s.cacheTTL, func(ctx context.Context) (*domain.Physician, error) {
			p, err := s.repo.FindByID(ctx, id)
			if err == nil && p == nil {
				return nil, errAbsent
			}
			return p, err
		})
		if errors.Is(err, errAbsent) {
			return nil, nil
		}
		return p, err
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		s.log.Debug("physician not found", zap.String("id", id.String()))
		return NotFound{ID: id}, nil
	}
	return Found{Physician: *p}, nil
}

// Find 按查询参数检索；结果为空时返回空切片而不是错误
func (s *ReadService) Find(ctx context.Context, params url.Values) ([]domain.Physician, error) {
	s.log.Debug("find physicians", zap.Any("params", params))
	return withTimeout(ctx, s.t.Long, "find", func(ctx context.Context) ([]domain.Physician, error) {
		if len(params) == 0 {
			return s.repo.FindAll(ctx)
		}
		if len(params) == 1 {
			if v, ok := params[ParamLastName]; ok && len(v) == 1 {
				return s.repo.FindByLastName(ctx, v[0])
			}
			if v, ok := params[ParamEmail]; ok && len(v) == 1 {
				p, err := s.repo.FindByEmail(ctx, v[0])
				if err != nil || p == nil {
					return []domain.Physician{}, err
				}
				return []domain.Physician{*p}, nil
			}
		}
		switch r := s.qb.Build(params).(type) {
		case NoFilter:
			return s.repo.FindAll(ctx)
		case Success:
			return s.repo.Find(ctx, r.Query)
		default:
			s.log.Debug("no usable search parameter", zap.Any("params", params))
			return []domain.Physician{}, nil
		}
	})
}

func (s *ReadService) FindAll(ctx context.Context) ([]domain.Physician, error) {
	return withTimeout(ctx, s.t.Short, "find all", s.repo.FindAll)
}

// LastNamesByPrefix 自动补全用：去重、排序
func (s *ReadService) LastNamesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	return withTimeout(ctx, s.t.Long, "last names by prefix", func(ctx context.Context) ([]string, error) {
		return s.repo.LastNamesByPrefix(ctx, prefix)
	})
}
