package repo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"physician-service/internal/core/database"
	"physician-service/internal/domain"
	"physician-service/internal/feature/physician"
)

// ErrUnsupportedPredicate 条件树里出现仓储不认识的节点或字段
var ErrUnsupportedPredicate = errors.New("unsupported predicate")

type PhysicianRepo struct {
	s database.Sessions
}

func NewPhysicianRepo(db *gorm.DB) *PhysicianRepo {
	return &PhysicianRepo{s: database.NewSessions(db)}
}

var _ domain.PhysicianRepository = (*PhysicianRepo)(nil)

// aggregate 加载整个聚合：地址/收入走 LEFT JOIN，兴趣走 preload
func aggregate(tx *gorm.DB) *gorm.DB {
	return tx.Model(&physician.PhysicianModel{}).
		Joins("Address").
		Joins("Revenue").
		Preload("Interests", func(db *gorm.DB) *gorm.DB { return db.Order("interest") })
}

func ordered(tx *gorm.DB) *gorm.DB {
	return tx.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Table: clause.CurrentTable, Name: "last_name"}},
		{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}},
	}})
}

func col(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

func (r *PhysicianRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Physician, error) {
	var out *domain.Physician
	err := r.s.WithSession(ctx, func(tx *gorm.DB) error {
		var e error
		out, e = takeOne(tx, clause.Eq{Column: col("id"), Value: id.String()})
		return e
	})
	return out, err
}

func (r *PhysicianRepo) FindByEmail(ctx context.Context, email string) (*domain.Physician, error) {
	var out *domain.Physician
	err := r.s.WithSession(ctx, func(tx *gorm.DB) error {
		var e error
		out, e = takeOne(tx, clause.Eq{Column: col("email"), Value: email})
		return e
	})
	return out, err
}

func takeOne(tx *gorm.DB, cond clause.Expression) (*domain.Physician, error) {
	var m physician.PhysicianModel
	err := aggregate(tx).Where(cond).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := m.ToDomain()
	return &p, nil
}

func (r *PhysicianRepo) FindByLastName(ctx context.Context, substr string) ([]domain.Physician, error) {
	return r.Find(ctx, domain.Query{Where: domain.Contains{Field: domain.FieldLastName, Value: substr}})
}

func (r *PhysicianRepo) FindAll(ctx context.Context) ([]domain.Physician, error) {
	return r.Find(ctx, domain.Query{})
}

func (r *PhysicianRepo) Find(ctx context.Context, q domain.Query) ([]domain.Physician, error) {
	var rows []physician.PhysicianModel
	err := r.s.WithSession(ctx, func(tx *gorm.DB) error {
		stmt := ordered(aggregate(tx))
		if q.Where != nil {
			expr, err := toClause(dialectOf(tx), q.Where)
			if err != nil {
				return err
			}
			stmt = stmt.Where(expr)
		}
		return stmt.Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Physician, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (r *PhysicianRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.s.WithSession(ctx, func(tx *gorm.DB) error {
		return tx.Model(&physician.PhysicianModel{}).Where("email = ?", email).Count(&n).Error
	})
	return n > 0, err
}

func (r *PhysicianRepo) LastNamesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	names := []string{}
	err := r.s.WithSession(ctx, func(tx *gorm.DB) error {
		return tx.Model(&physician.PhysicianModel{}).
			Distinct("last_name").
			Where(dialectOf(tx).hasPrefix(clause.Column{Name: "last_name"}, prefix)).
			Order("last_name").
			Pluck("last_name", &names).Error
	})
	return names, err
}

func (r *PhysicianRepo) Create(ctx context.Context, p *domain.Physician) error {
	p.ID = uuid.New()
	p.Version = 0
	p.Address.ID = uuid.New()
	if p.Revenue != nil {
		p.Revenue.ID = uuid.New()
	}
	// 与读回的记录一致：兴趣按值排序，时间戳为 UTC 微秒精度
	slices.Sort(p.Interests)
	p.CreatedAt = stamp()
	p.UpdatedAt = p.CreatedAt
	m := physician.FromDomain(p)
	err := r.s.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(m).Error
	})
	if database.IsDupKey(err) {
		return fmt.Errorf("%w: %s", domain.ErrEmailConflict, p.Email)
	}
	return err
}

func stamp() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// Update 乐观锁：WHERE version = 期望版本，命中 0 行即版本冲突。值对象在同一事务里同步。
func (r *PhysicianRepo) Update(ctx context.Context, p *domain.Physician) error {
	id := p.ID.String()
	err := r.s.WithTransaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&physician.PhysicianModel{}).
			Where("id = ? AND version = ?", id, p.Version).
			Updates(map[string]any{
				"last_name":      p.LastName,
				"email":          p.Email,
				"category":       p.Category,
				"newsletter":     p.Newsletter,
				"birth_date":     p.BirthDate,
				"homepage":       p.Homepage,
				"gender":         string(p.Gender),
				"marital_status": string(p.MaritalStatus),
				"version":        gorm.Expr("version + 1"),
				"updated_at":     stamp(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrVersionConflict
		}

		if err := tx.Model(&physician.AddressModel{}).
			Where("physician_id = ?", id).
			Updates(map[string]any{"postal_code": p.Address.PostalCode, "city": p.Address.City}).Error; err != nil {
			return err
		}
		if err := syncRevenue(tx, id, p.Revenue); err != nil {
			return err
		}
		if err := tx.Where("physician_id = ?", id).Delete(&physician.InterestModel{}).Error; err != nil {
			return err
		}
		if len(p.Interests) > 0 {
			rows := physician.InterestsFromDomain(id, p.Interests)
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		fresh, err := takeOne(tx, clause.Eq{Column: col("id"), Value: id})
		if err != nil {
			return err
		}
		if fresh == nil {
			return domain.ErrVersionConflict
		}
		*p = *fresh
		return nil
	})
	if database.IsDupKey(err) {
		return fmt.Errorf("%w: %s", domain.ErrEmailConflict, p.Email)
	}
	return err
}

// syncRevenue 收入：nil 删除，已有则原地更新，否则新建
func syncRevenue(tx *gorm.DB, physicianID string, rev *domain.Revenue) error {
	if rev == nil {
		return tx.Where("physician_id = ?", physicianID).Delete(&physician.RevenueModel{}).Error
	}
	var cur physician.RevenueModel
	err := tx.Where("physician_id = ?", physicianID).Take(&cur).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return tx.Create(&physician.RevenueModel{
			ID:          uuid.NewString(),
			PhysicianID: physicianID,
			Amount:      rev.Amount,
			Currency:    rev.Currency,
		}).Error
	case err != nil:
		return err
	}
	return tx.Model(&cur).Updates(map[string]any{"amount": rev.Amount, "currency": rev.Currency}).Error
}

// ---- 条件树 -> SQL ----

func fieldColumn(f domain.Field) (clause.Column, bool) {
	switch f {
	case domain.FieldLastName:
		return col("last_name"), true
	case domain.FieldEmail:
		return col("email"), true
	case domain.FieldCategory:
		return col("category"), true
	case domain.FieldGender:
		return col("gender"), true
	case domain.FieldMaritalStatus:
		return col("marital_status"), true
	case domain.FieldPostalCode:
		return clause.Column{Table: "Address", Name: "postal_code"}, true
	case domain.FieldCity:
		return clause.Column{Table: "Address", Name: "city"}, true
	case domain.FieldRevenueAmount:
		return clause.Column{Table: "Revenue", Name: "amount"}, true
	}
	return clause.Column{}, false
}

func toClause(d dialect, pred domain.Predicate) (clause.Expression, error) {
	switch p := pred.(type) {
	case domain.Contains:
		c, ok := fieldColumn(p.Field)
		if !ok {
			return nil, fmt.Errorf("%w: field %q", ErrUnsupportedPredicate, p.Field)
		}
		return d.contains(c, p.Value), nil
	case domain.HasPrefix:
		c, ok := fieldColumn(p.Field)
		if !ok {
			return nil, fmt.Errorf("%w: field %q", ErrUnsupportedPredicate, p.Field)
		}
		return d.hasPrefix(c, p.Value), nil
	case domain.Equals:
		c, ok := fieldColumn(p.Field)
		if !ok {
			return nil, fmt.Errorf("%w: field %q", ErrUnsupportedPredicate, p.Field)
		}
		v := p.Value
		switch tv := v.(type) {
		case domain.Gender:
			v = string(tv)
		case domain.MaritalStatus:
			v = string(tv)
		}
		return clause.Eq{Column: c, Value: v}, nil
	case domain.AtLeast:
		c, ok := fieldColumn(p.Field)
		if !ok {
			return nil, fmt.Errorf("%w: field %q", ErrUnsupportedPredicate, p.Field)
		}
		return clause.Gte{Column: c, Value: p.Value}, nil
	case domain.Member:
		if p.Field != domain.FieldInterests {
			return nil, fmt.Errorf("%w: member of %q", ErrUnsupportedPredicate, p.Field)
		}
		return clause.Expr{
			SQL:  "EXISTS (SELECT 1 FROM physician_interests pi WHERE pi.physician_id = ? AND pi.interest = ?)",
			Vars: []any{col("id"), string(p.Value)},
		}, nil
	case domain.And:
		exprs := make([]clause.Expression, 0, len(p))
		for _, sub := range p {
			e, err := toClause(d, sub)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		if len(exprs) == 0 {
			return clause.Expr{SQL: "1 = 1"}, nil
		}
		return clause.And(exprs...), nil
	case domain.Nothing:
		return clause.Expr{SQL: "1 = 0"}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedPredicate, pred)
}

// dialect 取自 Dialector.Name()。子串和前缀匹配区分大小写：
// sqlite 与 mysql 默认排序规则下 LIKE 不区分大小写，需换写法
type dialect string

func dialectOf(tx *gorm.DB) dialect { return dialect(tx.Dialector.Name()) }

func (d dialect) contains(c clause.Column, s string) clause.Expression {
	switch d {
	case "sqlite":
		return clause.Expr{SQL: "instr(?, ?) > 0", Vars: []any{c, s}}
	case "mysql":
		return clause.Expr{SQL: "? COLLATE utf8mb4_bin LIKE ? ESCAPE '!'", Vars: []any{c, "%" + escapeLike(s) + "%"}}
	}
	return clause.Expr{SQL: "? LIKE ? ESCAPE '!'", Vars: []any{c, "%" + escapeLike(s) + "%"}}
}

func (d dialect) hasPrefix(c clause.Column, s string) clause.Expression {
	switch d {
	case "sqlite":
		return clause.Expr{SQL: "substr(?, 1, ?) = ?", Vars: []any{c, utf8.RuneCountInString(s), s}}
	case "mysql":
		return clause.Expr{SQL: "? COLLATE utf8mb4_bin LIKE ? ESCAPE '!'", Vars: []any{c, escapeLike(s) + "%"}}
	}
	return clause.Expr{SQL: "? LIKE ? ESCAPE '!'", Vars: []any{c, escapeLike(s) + "%"}}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }
