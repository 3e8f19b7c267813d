package physician

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"physician-service/internal/domain"
)

type PhysicianModel struct {
	ID            string     `gorm:"primaryKey;size:36"`
	Version       int        `gorm:"not null;default:0"`
	LastName      string     `gorm:"size:64;not null;index"`
	Email         string     `gorm:"uniqueIndex;size:191;not null"`
	Category      int        `gorm:"not null;default:0"`
	Newsletter    bool       `gorm:"not null;default:false"`
	BirthDate     *time.Time `gorm:"type:date"`
	Homepage      string     `gorm:"size:255"`
	Gender        string     `gorm:"size:1"`
	MaritalStatus string     `gorm:"size:1"`

	// 值对象：一对一，随医生级联删除
	Address   AddressModel    `gorm:"foreignKey:PhysicianID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Revenue   *RevenueModel   `gorm:"foreignKey:PhysicianID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Interests []InterestModel `gorm:"foreignKey:PhysicianID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (PhysicianModel) TableName() string { return "physicians" }

type AddressModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	PhysicianID string `gorm:"uniqueIndex;size:36;not null"`
	PostalCode  string `gorm:"size:5;not null;index"`
	City        string `gorm:"size:64;not null"`
}

func (AddressModel) TableName() string { return "physician_addresses" }

type RevenueModel struct {
	ID          string          `gorm:"primaryKey;size:36"`
	PhysicianID string          `gorm:"uniqueIndex;size:36;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency    string          `gorm:"size:3;not null"`
}

func (RevenueModel) TableName() string { return "physician_revenues" }

// InterestModel 兴趣集合表，(physician_id, interest) 联合主键保证集合语义
type InterestModel struct {
	PhysicianID string `gorm:"primaryKey;size:36"`
	Interest    string `gorm:"primaryKey;size:1"`
}

func (InterestModel) TableName() string { return "physician_interests" }

// Models AutoMigrate 用
func Models() []any {
	return []any{&PhysicianModel{}, &AddressModel{}, &RevenueModel{}, &InterestModel{}}
}

func FromDomain(p *domain.Physician) *PhysicianModel {
	id := p.ID.String()
	m := &PhysicianModel{
		ID:            id,
		Version:       p.Version,
		LastName:      p.LastName,
		Email:         p.Email,
		Category:      p.Category,
		Newsletter:    p.Newsletter,
		BirthDate:     p.BirthDate,
		Homepage:      p.Homepage,
		Gender:        string(p.Gender),
		MaritalStatus: string(p.MaritalStatus),
		Address: AddressModel{
			ID:          p.Address.ID.String(),
			PhysicianID: id,
			PostalCode:  p.Address.PostalCode,
			City:        p.Address.City,
		},
		Interests: InterestsFromDomain(id, p.Interests),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Revenue != nil {
		m.Revenue = &RevenueModel{
			ID:          p.Revenue.ID.String(),
			PhysicianID: id,
			Amount:      p.Revenue.Amount,
			Currency:    p.Revenue.Currency,
		}
	}
	return m
}

func InterestsFromDomain(physicianID string, in []domain.Interest) []InterestModel {
	out := make([]InterestModel, 0, len(in))
	for _, i := range in {
		out = append(out, InterestModel{PhysicianID: physicianID, Interest: string(i)})
	}
	return out
}

func (m *PhysicianModel) ToDomain() domain.Physician {
	p := domain.Physician{
		ID:            parseID(m.ID),
		Version:       m.Version,
		LastName:      m.LastName,
		Email:         m.Email,
		Category:      m.Category,
		Newsletter:    m.Newsletter,
		BirthDate:     m.BirthDate,
		Homepage:      m.Homepage,
		Gender:        domain.Gender(m.Gender),
		MaritalStatus: domain.MaritalStatus(m.MaritalStatus),
		Interests:     make([]domain.Interest, 0, len(m.Interests)),
		Address: domain.Address{
			ID:         parseID(m.Address.ID),
			PostalCode: m.Address.PostalCode,
			City:       m.Address.City,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, i := range m.Interests {
		p.Interests = append(p.Interests, domain.Interest(i.Interest))
	}
	if m.Revenue != nil && m.Revenue.ID != "" {
		p.Revenue = &domain.Revenue{
			ID:       parseID(m.Revenue.ID),
			Amount:   m.Revenue.Amount,
			Currency: m.Revenue.Currency,
		}
	}
	return p
}

func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
