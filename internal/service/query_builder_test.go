package service

import (
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physician-service/internal/domain"
)

func buildWhere(t *testing.T, params url.Values) domain.Predicate {
	t.Helper()
	res := NewQueryBuilder().Build(params)
	s, ok := res.(Success)
	require.True(t, ok, "expected Success, got %T", res)
	return s.Query.Where
}

func TestQueryBuilder_NoParams(t *testing.T) {
	assert.IsType(t, NoFilter{}, NewQueryBuilder().Build(nil))
	assert.IsType(t, NoFilter{}, NewQueryBuilder().Build(url.Values{}))
}

func TestQueryBuilder_SingleParams(t *testing.T) {
	cases := []struct {
		name   string
		params url.Values
		want   domain.Predicate
	}{
		{"lastname", url.Values{"lastname": {"lph"}}, domain.Contains{Field: domain.FieldLastName, Value: "lph"}},
		{"email", url.Values{"email": {"acme"}}, domain.Contains{Field: domain.FieldEmail, Value: "acme"}},
		{"category", url.Values{"category": {"3"}}, domain.Equals{Field: domain.FieldCategory, Value: 3}},
		{"plz", url.Values{"plz": {"761"}}, domain.HasPrefix{Field: domain.FieldPostalCode, Value: "761"}},
		{"city", url.Values{"city": {"Karl"}}, domain.HasPrefix{Field: domain.FieldCity, Value: "Karl"}},
		{"gender", url.Values{"gender": {"F"}}, domain.Equals{Field: domain.FieldGender, Value: domain.GenderFemale}},
		{"marital status", url.Values{"maritalstatus": {"D"}}, domain.Equals{Field: domain.FieldMaritalStatus, Value: domain.MaritalDivorced}},
		{"unknown gender matches nothing", url.Values{"gender": {"X"}}, domain.Nothing{}},
		{"unknown marital status matches nothing", url.Values{"maritalstatus": {"X"}}, domain.Nothing{}},
		{"one interest", url.Values{"interest": {"S"}}, domain.Member{Field: domain.FieldInterests, Value: domain.InterestSport}},
		{"two interests", url.Values{"interest": {"S", "T"}}, domain.And{
			domain.Member{Field: domain.FieldInterests, Value: domain.InterestSport},
			domain.Member{Field: domain.FieldInterests, Value: domain.InterestTravel},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, buildWhere(t, tc.params))
		})
	}
}

func TestQueryBuilder_RevenueMin(t *testing.T) {
	where := buildWhere(t, url.Values{"revenuemin": {"100.5"}})
	al, ok := where.(domain.AtLeast)
	require.True(t, ok)
	assert.Equal(t, domain.FieldRevenueAmount, al.Field)
	assert.True(t, al.Value.Equal(decimal.RequireFromString("100.5")))
}

func TestQueryBuilder_CombinesWithAndInParamOrder(t *testing.T) {
	where := buildWhere(t, url.Values{"plz": {"1"}, "lastname": {"A"}, "unknown": {"x"}})
	assert.Equal(t, domain.And{
		domain.Contains{Field: domain.FieldLastName, Value: "A"},
		domain.HasPrefix{Field: domain.FieldPostalCode, Value: "1"},
	}, where)
}

func TestQueryBuilder_Failure(t *testing.T) {
	cases := map[string]url.Values{
		"unknown name":            {"foo": {"bar"}},
		"category not a number":   {"category": {"abc"}},
		"revenuemin not a number": {"revenuemin": {"lots"}},
		"lastname twice":          {"lastname": {"A", "B"}},
		"unknown interest":        {"interest": {"S", "Z"}},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			assert.IsType(t, Failure{}, NewQueryBuilder().Build(params))
		})
	}
}

func TestQueryBuilder_Register(t *testing.T) {
	qb := NewQueryBuilder()
	qb.Register("newsletter", func(values []string) (domain.Predicate, bool) {
		return domain.Nothing{}, len(values) == 1
	})
	res := qb.Build(url.Values{"newsletter": {"true"}})
	require.IsType(t, Success{}, res)
	assert.Equal(t, domain.Nothing{}, res.(Success).Query.Where)
}
