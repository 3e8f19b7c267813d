package handler

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"physician-service/internal/domain"
)

const dateLayout = "2006-01-02"

type AddressDTO struct {
	PostalCode string `json:"plz"`
	City       string `json:"city"`
}

type RevenueDTO struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// PhysicianDTO 写接口入参；字段校验交给 service.Validator
type PhysicianDTO struct {
	LastName      string      `json:"lastname"`
	Email         string      `json:"email"`
	Category      int         `json:"category"`
	Newsletter    bool        `json:"newsletter"`
	BirthDate     string      `json:"birthdate"` // yyyy-MM-dd
	Homepage      string      `json:"homepage"`
	Gender        string      `json:"gender"`
	MaritalStatus string      `json:"maritalStatus"`
	Interests     []string    `json:"interests"`
	Revenue       *RevenueDTO `json:"revenue"`
	Address       AddressDTO  `json:"address"`
}

func (d *PhysicianDTO) ToDomain() (domain.Physician, error) {
	p := domain.Physician{
		LastName:      d.LastName,
		Email:         d.Email,
		Category:      d.Category,
		Newsletter:    d.Newsletter,
		Homepage:      d.Homepage,
		Gender:        domain.Gender(d.Gender),
		MaritalStatus: domain.MaritalStatus(d.MaritalStatus),
		Interests:     make([]domain.Interest, 0, len(d.Interests)),
		Address:       domain.Address{PostalCode: d.Address.PostalCode, City: d.Address.City},
	}
	for _, i := range d.Interests {
		p.Interests = append(p.Interests, domain.Interest(i))
	}
	if d.BirthDate != "" {
		t, err := time.Parse(dateLayout, d.BirthDate)
		if err != nil {
			return domain.Physician{}, fmt.Errorf("birthdate: expected yyyy-MM-dd, got %q", d.BirthDate)
		}
		p.BirthDate = &t
	}
	if d.Revenue != nil {
		p.Revenue = &domain.Revenue{Amount: d.Revenue.Amount, Currency: d.Revenue.Currency}
	}
	return p, nil
}

// PhysicianView 读接口出参
type PhysicianView struct {
	ID            uuid.UUID   `json:"id"`
	Version       int         `json:"version"`
	LastName      string      `json:"lastname"`
	Email         string      `json:"email"`
	Category      int         `json:"category"`
	Newsletter    bool        `json:"newsletter"`
	BirthDate     string      `json:"birthdate,omitempty"`
	Homepage      string      `json:"homepage,omitempty"`
	Gender        string      `json:"gender,omitempty"`
	MaritalStatus string      `json:"maritalStatus,omitempty"`
	Interests     []string    `json:"interests"`
	Revenue       *RevenueDTO `json:"revenue,omitempty"`
	Address       AddressDTO  `json:"address"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func ToView(p domain.Physician) PhysicianView {
	v := PhysicianView{
		ID:            p.ID,
		Version:       p.Version,
		LastName:      p.LastName,
		Email:         p.Email,
		Category:      p.Category,
		Newsletter:    p.Newsletter,
		Homepage:      p.Homepage,
		Gender:        string(p.Gender),
		MaritalStatus: string(p.MaritalStatus),
		Interests:     make([]string, 0, len(p.Interests)),
		Address:       AddressDTO{PostalCode: p.Address.PostalCode, City: p.Address.City},
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for _, i := range p.Interests {
		v.Interests = append(v.Interests, string(i))
	}
	if p.BirthDate != nil {
		v.BirthDate = p.BirthDate.Format(dateLayout)
	}
	if p.Revenue != nil {
		v.Revenue = &RevenueDTO{Amount: p.Revenue.Amount, Currency: p.Revenue.Currency}
	}
	return v
}

func toViews(ps []domain.Physician) []PhysicianView {
	out := make([]PhysicianView, 0, len(ps))
	for _, p := range ps {
		out = append(out, ToView(p))
	}
	return out
}
