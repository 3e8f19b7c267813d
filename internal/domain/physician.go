package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrVersionConflict 更新时版本号已过期（乐观锁）
	ErrVersionConflict = errors.New("physician version conflict")
	// ErrEmailConflict 存储层唯一索引冲突
	ErrEmailConflict = errors.New("physician email conflict")
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

var genders = []Gender{GenderMale, GenderFemale, GenderOther}

// ParseGender 未知取值返回 ok=false，由调用方决定如何处理
func ParseGender(s string) (Gender, bool) {
	for _, g := range genders {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "S"
	MaritalMarried  MaritalStatus = "M"
	MaritalDivorced MaritalStatus = "D"
	MaritalWidowed  MaritalStatus = "W"
)

var maritalStatuses = []MaritalStatus{MaritalSingle, MaritalMarried, MaritalDivorced, MaritalWidowed}

func ParseMaritalStatus(s string) (MaritalStatus, bool) {
	for _, m := range maritalStatuses {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

type Interest string

const (
	InterestSport   Interest = "S"
	InterestReading Interest = "R"
	InterestTravel  Interest = "T"
)

var interests = []Interest{InterestSport, InterestReading, InterestTravel}

func ParseInterest(s string) (Interest, bool) {
	for _, i := range interests {
		if string(i) == s {
			return i, true
		}
	}
	return "", false
}

// Address 值对象：随医生一起创建/删除
type Address struct {
	ID         uuid.UUID `json:"id"`
	PostalCode string    `json:"plz"`
	City       string    `json:"city"`
}

// Revenue 值对象（金额 + ISO-4217 币种）
type Revenue struct {
	ID       uuid.UUID       `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// AnyVersion 更新时不携带期望版本（以当前存储版本为准）
const AnyVersion = -1

type Physician struct {
	ID            uuid.UUID     `json:"id"`
	Version       int           `json:"version"`
	LastName      string        `json:"lastname"`
	Email         string        `json:"email"`
	Category      int           `json:"category"`
	Newsletter    bool          `json:"newsletter"`
	BirthDate     *time.Time    `json:"birthdate,omitempty"`
	Homepage      string        `json:"homepage,omitempty"`
	Gender        Gender        `json:"gender,omitempty"`
	MaritalStatus MaritalStatus `json:"maritalStatus,omitempty"`
	Interests     []Interest    `json:"interests"`
	Revenue       *Revenue      `json:"revenue,omitempty"`
	Address       Address       `json:"address"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// HasInterest 集合成员判断
func (p *Physician) HasInterest(i Interest) bool {
	for _, v := range p.Interests {
		if v == i {
			return true
		}
	}
	return false
}

// Query 由 QueryBuilder 生成；Where 为 nil 表示不过滤
type Query struct {
	Where Predicate
}

// PhysicianRepository 存储抽象。FindByID/FindByEmail 查不到时返回 (nil, nil)。
type PhysicianRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Physician, error)
	FindByEmail(ctx context.Context, email string) (*Physician, error)
	FindByLastName(ctx context.Context, substr string) ([]Physician, error)
	FindAll(ctx context.Context) ([]Physician, error)
	Find(ctx context.Context, q Query) ([]Physician, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	LastNamesByPrefix(ctx context.Context, prefix string) ([]string, error)

	// Create 分配 ID/Version/时间戳后回写到 p
	Create(ctx context.Context, p *Physician) error
	// Update 以 p.Version 作为期望版本，成功后回写新版本与 UpdatedAt
	Update(ctx context.Context, p *Physician) error
}
