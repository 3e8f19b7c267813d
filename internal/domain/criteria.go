package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Field 可参与查询的聚合字段
type Field string

const (
	FieldLastName      Field = "lastname"
	FieldEmail         Field = "email"
	FieldCategory      Field = "category"
	FieldPostalCode    Field = "address.plz"
	FieldCity          Field = "address.city"
	FieldRevenueAmount Field = "revenue.amount"
	FieldGender        Field = "gender"
	FieldMaritalStatus Field = "maritalStatus"
	FieldInterests     Field = "interests"
)

// Predicate 可组合的查询条件；Matches 是内存求值，仓储层负责翻译成 SQL
type Predicate interface {
	Matches(p *Physician) bool
}

// Contains 区分大小写的子串匹配
type Contains struct {
	Field Field
	Value string
}

// HasPrefix 前缀匹配
type HasPrefix struct {
	Field Field
	Value string
}

// Equals 精确匹配（string 字段与 int 字段）
type Equals struct {
	Field Field
	Value any
}

// AtLeast 数值下限（含）
type AtLeast struct {
	Field Field
	Value decimal.Decimal
}

// Member 集合成员
type Member struct {
	Field Field
	Value Interest
}

type And []Predicate

// Nothing 不匹配任何记录
type Nothing struct{}

func (c Contains) Matches(p *Physician) bool {
	v, ok := stringField(p, c.Field)
	return ok && strings.Contains(v, c.Value)
}

func (h HasPrefix) Matches(p *Physician) bool {
	v, ok := stringField(p, h.Field)
	return ok && strings.HasPrefix(v, h.Value)
}

func (e Equals) Matches(p *Physician) bool {
	switch want := e.Value.(type) {
	case int:
		return e.Field == FieldCategory && p.Category == want
	case string:
		v, ok := stringField(p, e.Field)
		return ok && v == want
	case Gender:
		return e.Field == FieldGender && p.Gender == want
	case MaritalStatus:
		return e.Field == FieldMaritalStatus && p.MaritalStatus == want
	}
	return false
}

func (a AtLeast) Matches(p *Physician) bool {
	if a.Field != FieldRevenueAmount || p.Revenue == nil {
		return false
	}
	return p.Revenue.Amount.GreaterThanOrEqual(a.Value)
}

func (m Member) Matches(p *Physician) bool {
	return m.Field == FieldInterests && p.HasInterest(m.Value)
}

func (a And) Matches(p *Physician) bool {
	for _, pred := range a {
		if !pred.Matches(p) {
			return false
		}
	}
	return true
}

func (Nothing) Matches(*Physician) bool { return false }

// Matches 对整个查询求值；Where 为空时全部匹配
func (q Query) Matches(p *Physician) bool {
	return q.Where == nil || q.Where.Matches(p)
}

func stringField(p *Physician, f Field) (string, bool) {
	switch f {
	case FieldLastName:
		return p.LastName, true
	case FieldEmail:
		return p.Email, true
	case FieldPostalCode:
		return p.Address.PostalCode, true
	case FieldCity:
		return p.Address.City, true
	case FieldGender:
		return string(p.Gender), true
	case FieldMaritalStatus:
		return string(p.MaritalStatus), true
	}
	return "", false
}
