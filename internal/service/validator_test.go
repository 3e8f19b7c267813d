package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physician-service/internal/domain"
)

func validPhysician() domain.Physician {
	return domain.Physician{
		LastName:      "Alpha",
		Email:         "alpha@acme.de",
		Category:      1,
		Newsletter:    true,
		Homepage:      "https://acme.de",
		Gender:        domain.GenderMale,
		MaritalStatus: domain.MaritalSingle,
		Interests:     []domain.Interest{domain.InterestSport, domain.InterestReading},
		Revenue:       &domain.Revenue{Amount: decimal.NewFromInt(1000), Currency: "EUR"},
		Address:       domain.Address{PostalCode: "12345", City: "Aachen"},
	}
}

func keys(vs []Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Key)
	}
	return out
}

func TestValidator_Valid(t *testing.T) {
	v := NewValidator()
	p := validPhysician()
	vs := v.Validate(&p)
	require.NotNil(t, vs)
	assert.Empty(t, vs)

	p.Revenue = nil
	p.Homepage = ""
	p.Gender = ""
	p.MaritalStatus = ""
	p.Interests = nil
	assert.Empty(t, v.Validate(&p))
}

func TestValidator_LastNamePatterns(t *testing.T) {
	v := NewValidator()
	for _, name := range []string{"Alpha", "Alpha-Beta", "von Alpha", "von der Alpha", "o'Alpha", "o' Alpha", "van Alpha-Beta", "Ärztin"} {
		p := validPhysician()
		p.LastName = name
		assert.Empty(t, v.Validate(&p), name)
	}
	for _, name := range []string{"alpha", "ALPHA", "Alpha-", "A", "van  Alpha", "o'  Alpha", "vonAlpha", "Alpha1"} {
		p := validPhysician()
		p.LastName = name
		assert.Equal(t, []string{"physician.lastname.pattern"}, keys(v.Validate(&p)), name)
	}
}

func TestValidator_EmptyRecordReportsRequiredFieldsInOrder(t *testing.T) {
	v := NewValidator()
	vs := v.Validate(&domain.Physician{})
	assert.Equal(t, []string{
		"physician.lastname.notEmpty",
		"physician.email.notEmpty",
		"address.plz.notEmpty",
		"address.city.notEmpty",
	}, keys(vs))
	assert.Equal(t, "lastname", vs[0].Field)
	assert.NotEmpty(t, vs[0].Message)
}

func TestValidator_CollectsAllViolations(t *testing.T) {
	v := NewValidator()
	p := validPhysician()
	p.Email = "not-an-email"
	p.Category = 10
	p.Gender = "X"
	p.MaritalStatus = "Q"
	p.Interests = []domain.Interest{domain.InterestSport, domain.InterestSport, "Z"}
	p.Homepage = "acme"
	p.Revenue = &domain.Revenue{Amount: decimal.NewFromInt(-1), Currency: "EURO"}
	p.Address.PostalCode = "1234"

	assert.Equal(t, []string{
		"physician.email.pattern",
		"physician.category.max",
		"physician.gender.invalid",
		"physician.maritalstatus.invalid",
		"physician.interests.unique",
		"physician.interests.invalid",
		"physician.homepage.url",
		"revenue.amount.min",
		"revenue.currency.invalid",
		"address.plz.pattern",
	}, keys(v.Validate(&p)))
}

func TestValidator_CategoryBounds(t *testing.T) {
	v := NewValidator()
	p := validPhysician()
	p.Category = -1
	assert.Equal(t, []string{"physician.category.min"}, keys(v.Validate(&p)))
	p.Category = 9
	assert.Empty(t, v.Validate(&p))
}

func TestValidator_PostalCodeDigits(t *testing.T) {
	v := NewValidator()
	p := validPhysician()
	p.Address.PostalCode = "1234a"
	assert.Equal(t, []string{"address.plz.pattern"}, keys(v.Validate(&p)))
	p.Address.PostalCode = "01234"
	assert.Empty(t, v.Validate(&p))
}

func TestValidator_Deterministic(t *testing.T) {
	v := NewValidator()
	p := validPhysician()
	p.Email = ""
	assert.Equal(t, v.Validate(&p), v.Validate(&p))
}
