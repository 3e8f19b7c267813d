package repo

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"physician-service/internal/domain"
)

// MemoryPhysicianRepo 进程内实现（db.driver=memory、单测用）。
// 条件树直接用 Predicate.Matches 求值；email 唯一性与乐观锁语义与 gorm 实现一致。
type MemoryPhysicianRepo struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]domain.Physician
	now  func() time.Time
}

func NewMemoryPhysicianRepo() *MemoryPhysicianRepo {
	return &MemoryPhysicianRepo{rows: map[uuid.UUID]domain.Physician{}, now: time.Now}
}

var _ domain.PhysicianRepository = (*MemoryPhysicianRepo)(nil)

func (r *MemoryPhysicianRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Physician, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	c := clonePhysician(p)
	return &c, nil
}

func (r *MemoryPhysicianRepo) FindByEmail(ctx context.Context, email string) (*domain.Physician, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.rows {
		if p.Email == email {
			c := clonePhysician(p)
			return &c, nil
		}
	}
	return nil, nil
}

func (r *MemoryPhysicianRepo) FindByLastName(ctx context.Context, substr string) ([]domain.Physician, error) {
	return r.Find(ctx, domain.Query{Where: domain.Contains{Field: domain.FieldLastName, Value: substr}})
}

func (r *MemoryPhysicianRepo) FindAll(ctx context.Context) ([]domain.Physician, error) {
	return r.Find(ctx, domain.Query{})
}

func (r *MemoryPhysicianRepo) Find(ctx context.Context, q domain.Query) ([]domain.Physician, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]domain.Physician, 0, len(r.rows))
	for _, p := range r.rows {
		if q.Matches(&p) {
			out = append(out, clonePhysician(p))
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *MemoryPhysicianRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	p, err := r.FindByEmail(ctx, email)
	return p != nil, err
}

func (r *MemoryPhysicianRepo) LastNamesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	names := []string{}
	for _, p := range r.rows {
		if _, dup := seen[p.LastName]; dup || !strings.HasPrefix(p.LastName, prefix) {
			continue
		}
		seen[p.LastName] = struct{}{}
		names = append(names, p.LastName)
	}
	sort.Strings(names)
	return names, nil
}

func (r *MemoryPhysicianRepo) Create(ctx context.Context, p *domain.Physician) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(p.Email, uuid.Nil) {
		return fmt.Errorf("%w: %s", domain.ErrEmailConflict, p.Email)
	}
	now := r.now()
	p.ID = uuid.New()
	p.Version = 0
	p.Address.ID = uuid.New()
	if p.Revenue != nil {
		p.Revenue.ID = uuid.New()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	slices.Sort(p.Interests)
	r.rows[p.ID] = clonePhysician(*p)
	return nil
}

func (r *MemoryPhysicianRepo) Update(ctx context.Context, p *domain.Physician) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[p.ID]
	if !ok || cur.Version != p.Version {
		return domain.ErrVersionConflict
	}
	if r.emailTaken(p.Email, p.ID) {
		return fmt.Errorf("%w: %s", domain.ErrEmailConflict, p.Email)
	}
	next := clonePhysician(*p)
	slices.Sort(next.Interests)
	next.Version = cur.Version + 1
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = r.now()
	next.Address.ID = cur.Address.ID
	if next.Revenue != nil {
		if cur.Revenue != nil {
			next.Revenue.ID = cur.Revenue.ID
		} else {
			next.Revenue.ID = uuid.New()
		}
	}
	r.rows[p.ID] = next
	*p = clonePhysician(next)
	return nil
}

// 调用方持有锁
func (r *MemoryPhysicianRepo) emailTaken(email string, except uuid.UUID) bool {
	for id, p := range r.rows {
		if id != except && p.Email == email {
			return true
		}
	}
	return false
}

func clonePhysician(p domain.Physician) domain.Physician {
	c := p
	c.Interests = slices.Clone(p.Interests)
	if c.Interests == nil {
		c.Interests = []domain.Interest{}
	}
	if p.Revenue != nil {
		rev := *p.Revenue
		c.Revenue = &rev
	}
	if p.BirthDate != nil {
		d := *p.BirthDate
		c.BirthDate = &d
	}
	return c
}
