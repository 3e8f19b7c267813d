package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func samplePhysician() *Physician {
	return &Physician{
		LastName:      "Alpha",
		Email:         "alpha@acme.de",
		Category:      2,
		Gender:        GenderFemale,
		MaritalStatus: MaritalMarried,
		Interests:     []Interest{InterestSport, InterestTravel},
		Revenue:       &Revenue{Amount: decimal.RequireFromString("1200.50"), Currency: "EUR"},
		Address:       Address{PostalCode: "76133", City: "Karlsruhe"},
	}
}

func TestPredicates(t *testing.T) {
	p := samplePhysician()

	cases := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"contains lastname", Contains{Field: FieldLastName, Value: "lph"}, true},
		{"contains is case sensitive", Contains{Field: FieldLastName, Value: "alpha"}, false},
		{"contains email", Contains{Field: FieldEmail, Value: "@acme"}, true},
		{"prefix plz", HasPrefix{Field: FieldPostalCode, Value: "761"}, true},
		{"prefix plz mismatch", HasPrefix{Field: FieldPostalCode, Value: "133"}, false},
		{"prefix city", HasPrefix{Field: FieldCity, Value: "Karls"}, true},
		{"equals category", Equals{Field: FieldCategory, Value: 2}, true},
		{"equals category mismatch", Equals{Field: FieldCategory, Value: 3}, false},
		{"equals gender", Equals{Field: FieldGender, Value: GenderFemale}, true},
		{"equals marital status", Equals{Field: FieldMaritalStatus, Value: MaritalSingle}, false},
		{"revenue at least equal", AtLeast{Field: FieldRevenueAmount, Value: decimal.RequireFromString("1200.50")}, true},
		{"revenue at least higher", AtLeast{Field: FieldRevenueAmount, Value: decimal.NewFromInt(5000)}, false},
		{"member", Member{Field: FieldInterests, Value: InterestTravel}, true},
		{"member missing", Member{Field: FieldInterests, Value: InterestReading}, false},
		{"nothing", Nothing{}, false},
		{"empty and", And{}, true},
		{"and all true", And{Contains{Field: FieldLastName, Value: "A"}, Equals{Field: FieldCategory, Value: 2}}, true},
		{"and one false", And{Contains{Field: FieldLastName, Value: "A"}, Nothing{}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.pred.Matches(p))
		})
	}
}

func TestAtLeastWithoutRevenue(t *testing.T) {
	p := samplePhysician()
	p.Revenue = nil
	assert.False(t, AtLeast{Field: FieldRevenueAmount, Value: decimal.Zero}.Matches(p))
}

func TestQueryMatchesWithoutWhere(t *testing.T) {
	assert.True(t, Query{}.Matches(samplePhysician()))
	assert.False(t, Query{Where: Nothing{}}.Matches(samplePhysician()))
}

func TestParseEnums(t *testing.T) {
	g, ok := ParseGender("O")
	assert.True(t, ok)
	assert.Equal(t, GenderOther, g)
	_, ok = ParseGender("X")
	assert.False(t, ok)

	m, ok := ParseMaritalStatus("W")
	assert.True(t, ok)
	assert.Equal(t, MaritalWidowed, m)
	_, ok = ParseMaritalStatus("")
	assert.False(t, ok)

	i, ok := ParseInterest("R")
	assert.True(t, ok)
	assert.Equal(t, InterestReading, i)
	_, ok = ParseInterest("r")
	assert.False(t, ok)
}
