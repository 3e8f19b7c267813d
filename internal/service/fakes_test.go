package service

import (
	"context"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"physician-service/internal/domain"
	"physician-service/internal/repo"
)

// spyRepo 记录调用次数，可选择让某些调用阻塞到 ctx 结束或返回指定错误
type spyRepo struct {
	inner *repo.MemoryPhysicianRepo

	mu    sync.Mutex
	calls map[string]int

	block     map[string]bool
	createErr error
	updateErr error
}

func newSpyRepo() *spyRepo {
	return &spyRepo{inner: repo.NewMemoryPhysicianRepo(), calls: map[string]int{}, block: map[string]bool{}}
}

var _ domain.PhysicianRepository = (*spyRepo)(nil)

func (s *spyRepo) enter(ctx context.Context, op string) error {
	s.mu.Lock()
	s.calls[op]++
	blocked := s.block[op]
	s.mu.Unlock()
	if blocked {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (s *spyRepo) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *spyRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Physician, error) {
	if err := s.enter(ctx, "FindByID"); err != nil {
		return nil, err
	}
	return s.inner.FindByID(ctx, id)
}

func (s *spyRepo) FindByEmail(ctx context.Context, email string) (*domain.Physician, error) {
	if err := s.enter(ctx, "FindByEmail"); err != nil {
		return nil, err
	}
	return s.inner.FindByEmail(ctx, email)
}

func (s *spyRepo) FindByLastName(ctx context.Context, substr string) ([]domain.Physician, error) {
	if err := s.enter(ctx, "FindByLastName"); err != nil {
		return nil, err
	}
	return s.inner.FindByLastName(ctx, substr)
}

func (s *spyRepo) FindAll(ctx context.Context) ([]domain.Physician, error) {
	if err := s.enter(ctx, "FindAll"); err != nil {
		return nil, err
	}
	return s.inner.FindAll(ctx)
}

func (s *spyRepo) Find(ctx context.Context, q domain.Query) ([]domain.Physician, error) {
	if err := s.enter(ctx, "Find"); err != nil {
		return nil, err
	}
	return s.inner.Find(ctx, q)
}

func (s *spyRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	if err := s.enter(ctx, "EmailExists"); err != nil {
		return false, err
	}
	return s.inner.EmailExists(ctx, email)
}

func (s *spyRepo) LastNamesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	if err := s.enter(ctx, "LastNamesByPrefix"); err != nil {
		return nil, err
	}
	return s.inner.LastNamesByPrefix(ctx, prefix)
}

func (s *spyRepo) Create(ctx context.Context, p *domain.Physician) error {
	if err := s.enter(ctx, "Create"); err != nil {
		return err
	}
	if s.createErr != nil {
		return s.createErr
	}
	return s.inner.Create(ctx, p)
}

func (s *spyRepo) Update(ctx context.Context, p *domain.Physician) error {
	if err := s.enter(ctx, "Update"); err != nil {
		return err
	}
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.inner.Update(ctx, p)
}

// mustCreate 绕过服务直接写入底层存储
func (s *spyRepo) mustCreate(p domain.Physician) domain.Physician {
	if err := s.inner.Create(context.Background(), &p); err != nil {
		panic(err)
	}
	return p
}

func params(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Add(kv[i], kv[i+1])
	}
	return v
}
