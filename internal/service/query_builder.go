package service

import (
	"net/url"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"physician-service/internal/domain"
)

// 查询参数名
const (
	ParamLastName      = "lastname"
	ParamEmail         = "email"
	ParamCategory      = "category"
	ParamPostalCode    = "plz"
	ParamCity          = "city"
	ParamRevenueMin    = "revenuemin"
	ParamGender        = "gender"
	ParamMaritalStatus = "maritalstatus"
	ParamInterest      = "interest"
)

// ParamHandler 参数值 -> 条件；ok=false 表示丢弃该参数
type ParamHandler func(values []string) (pred domain.Predicate, ok bool)

// QueryBuilder 按参数名分派到注册表里的纯函数，存活的条件用 AND 组合
type QueryBuilder struct {
	handlers map[string]ParamHandler
}

func NewQueryBuilder() *QueryBuilder {
	b := &QueryBuilder{handlers: map[string]ParamHandler{}}
	b.Register(ParamLastName, single(func(v string) (domain.Predicate, bool) {
		return domain.Contains{Field: domain.FieldLastName, Value: v}, true
	}))
	b.Register(ParamEmail, single(func(v string) (domain.Predicate, bool) {
		return domain.Contains{Field: domain.FieldEmail, Value: v}, true
	}))
	b.Register(ParamCategory, single(func(v string) (domain.Predicate, bool) {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, false
		}
		return domain.Equals{Field: domain.FieldCategory, Value: n}, true
	}))
	b.Register(ParamPostalCode, single(func(v string) (domain.Predicate, bool) {
		return domain.HasPrefix{Field: domain.FieldPostalCode, Value: v}, true
	}))
	b.Register(ParamCity, single(func(v string) (domain.Predicate, bool) {
		return domain.HasPrefix{Field: domain.FieldCity, Value: v}, true
	}))
	b.Register(ParamRevenueMin, single(func(v string) (domain.Predicate, bool) {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, false
		}
		return domain.AtLeast{Field: domain.FieldRevenueAmount, Value: d}, true
	}))
	// 未知枚举值：不丢弃参数，而是“什么都不匹配”
	b.Register(ParamGender, single(func(v string) (domain.Predicate, bool) {
		g, ok := domain.ParseGender(v)
		if !ok {
			return domain.Nothing{}, true
		}
		return domain.Equals{Field: domain.FieldGender, Value: g}, true
	}))
	b.Register(ParamMaritalStatus, single(func(v string) (domain.Predicate, bool) {
		m, ok := domain.ParseMaritalStatus(v)
		if !ok {
			return domain.Nothing{}, true
		}
		return domain.Equals{Field: domain.FieldMaritalStatus, Value: m}, true
	}))
	b.Register(ParamInterest, interests)
	return b
}

// Register 新增或覆盖一个参数处理器
func (b *QueryBuilder) Register(name string, h ParamHandler) { b.handlers[name] = h }

func (b *QueryBuilder) Build(params url.Values) QueryBuilderResult {
	if len(params) == 0 {
		queryBuilds.WithLabelValues("no_filter").Inc()
		return NoFilter{}
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var preds domain.And
	for _, name := range names {
		h, ok := b.handlers[name]
		if !ok {
			continue
		}
		if p, ok := h(params[name]); ok {
			preds = append(preds, p)
		}
	}

	switch len(preds) {
	case 0:
		queryBuilds.WithLabelValues("failure").Inc()
		return Failure{}
	case 1:
		queryBuilds.WithLabelValues("success").Inc()
		return Success{Query: domain.Query{Where: preds[0]}}
	}
	queryBuilds.WithLabelValues("success").Inc()
	return Success{Query: domain.Query{Where: preds}}
}

// single 只接受恰好一个取值
func single(fn func(v string) (domain.Predicate, bool)) ParamHandler {
	return func(values []string) (domain.Predicate, bool) {
		if len(values) != 1 {
			return nil, false
		}
		return fn(values[0])
	}
}

// interests 多值：每个值一个成员条件；任一值无法识别则整个参数丢弃
func interests(values []string) (domain.Predicate, bool) {
	if len(values) == 0 {
		return nil, false
	}
	preds := make(domain.And, 0, len(values))
	for _, v := range values {
		i, ok := domain.ParseInterest(v)
		if !ok {
			return nil, false
		}
		preds = append(preds, domain.Member{Field: domain.FieldInterests, Value: i})
	}
	if len(preds) == 1 {
		return preds[0], true
	}
	return preds, true
}
