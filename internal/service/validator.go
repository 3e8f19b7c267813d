package service

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/currency"

	"physician-service/internal/domain"
)

// Violation 单条校验错误；Key 是消息键，Field 指向出错字段
type Violation struct {
	Key     string `json:"key"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

var lastNamePattern = regexp.MustCompile(`^(o' ?|(von|von der|von und zu|van) )?\p{Lu}\p{Ll}+(-\p{Lu}\p{Ll}+)?$`)

// rule 一条规则 = 取值 + validator tag；skip 为真时不参与校验
type rule struct {
	field   string
	key     string
	message string
	tag     string
	value   func(p *domain.Physician) any
	skip    func(p *domain.Physician) bool
}

func noRevenue(p *domain.Physician) bool { return p.Revenue == nil }

// 顺序即输出顺序
var rules = []rule{
	{field: "lastname", key: "physician.lastname.notEmpty", message: "last name must not be empty",
		tag: "required", value: func(p *domain.Physician) any { return p.LastName }},
	{field: "lastname", key: "physician.lastname.pattern", message: "last name has an invalid format",
		tag: "omitempty,lastname", value: func(p *domain.Physician) any { return p.LastName }},
	{field: "email", key: "physician.email.notEmpty", message: "email must not be empty",
		tag: "required", value: func(p *domain.Physician) any { return p.Email }},
	{field: "email", key: "physician.email.pattern", message: "email has an invalid format",
		tag: "omitempty,email", value: func(p *domain.Physician) any { return p.Email }},
	{field: "category", key: "physician.category.min", message: "category must be at least 0",
		tag: "gte=0", value: func(p *domain.Physician) any { return p.Category }},
	{field: "category", key: "physician.category.max", message: "category must be at most 9",
		tag: "lte=9", value: func(p *domain.Physician) any { return p.Category }},
	{field: "gender", key: "physician.gender.invalid", message: "unknown gender",
		tag: "omitempty,gender", value: func(p *domain.Physician) any { return string(p.Gender) }},
	{field: "maritalStatus", key: "physician.maritalstatus.invalid", message: "unknown marital status",
		tag: "omitempty,maritalstatus", value: func(p *domain.Physician) any { return string(p.MaritalStatus) }},
	{field: "interests", key: "physician.interests.unique", message: "interests must not contain duplicates",
		tag: "unique", value: func(p *domain.Physician) any { return interestCodes(p) }},
	{field: "interests", key: "physician.interests.invalid", message: "unknown interest",
		tag: "dive,interest", value: func(p *domain.Physician) any { return interestCodes(p) }},
	{field: "homepage", key: "physician.homepage.url", message: "homepage must be an absolute URL",
		tag: "omitempty,url", value: func(p *domain.Physician) any { return p.Homepage }},
	{field: "revenue.amount", key: "revenue.amount.min", message: "revenue must not be negative",
		tag: "gte=0", skip: noRevenue, value: func(p *domain.Physician) any { return p.Revenue.Amount.Sign() }},
	{field: "revenue.currency", key: "revenue.currency.invalid", message: "unknown ISO-4217 currency",
		tag: "currency", skip: noRevenue, value: func(p *domain.Physician) any { return p.Revenue.Currency }},
	{field: "address.plz", key: "address.plz.notEmpty", message: "postal code must not be empty",
		tag: "required", value: func(p *domain.Physician) any { return p.Address.PostalCode }},
	{field: "address.plz", key: "address.plz.pattern", message: "postal code must have exactly 5 digits",
		tag: "omitempty,len=5,numeric", value: func(p *domain.Physician) any { return p.Address.PostalCode }},
	{field: "address.city", key: "address.city.notEmpty", message: "city must not be empty",
		tag: "required", value: func(p *domain.Physician) any { return p.Address.City }},
}

func interestCodes(p *domain.Physician) []string {
	out := make([]string, 0, len(p.Interests))
	for _, i := range p.Interests {
		out = append(out, string(i))
	}
	return out
}

// Validator 纯函数：无 I/O，相同输入总是相同输出
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "lastname", func(fl validator.FieldLevel) bool {
		return lastNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "gender", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseGender(fl.Field().String())
		return ok
	})
	mustRegister(v, "maritalstatus", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseMaritalStatus(fl.Field().String())
		return ok
	})
	mustRegister(v, "interest", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseInterest(fl.Field().String())
		return ok
	})
	mustRegister(v, "currency", func(fl validator.FieldLevel) bool {
		_, err := currency.ParseISO(fl.Field().String())
		return err == nil
	})
	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate 返回全部违规；空切片表示通过
func (val *Validator) Validate(p *domain.Physician) []Violation {
	out := []Violation{}
	for _, r := range rules {
		if r.skip != nil && r.skip(p) {
			continue
		}
		if err := val.v.Var(r.value(p), r.tag); err != nil {
			out = append(out, Violation{Key: r.key, Message: r.message, Field: r.field})
		}
	}
	return out
}
