package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"physician-service/internal/domain"
	"physician-service/internal/service"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// SamplePhysicians 本地联调用的示例数据
func SamplePhysicians() []domain.Physician {
	return []domain.Physician{
		{
			LastName: "Admin", Email: "admin@acme.com", Category: 0, Newsletter: true,
			BirthDate: date(1980, time.January, 31), Homepage: "https://www.acme.com",
			Gender: domain.GenderFemale, MaritalStatus: domain.MaritalMarried,
			Interests: []domain.Interest{domain.InterestSport, domain.InterestReading},
			Revenue:   &domain.Revenue{Amount: decimal.RequireFromString("1234.56"), Currency: "EUR"},
			Address:   domain.Address{PostalCode: "76133", City: "Karlsruhe"},
		},
		{
			LastName: "Alpha", Email: "alpha@acme.de", Category: 1, Newsletter: true,
			BirthDate: date(1975, time.March, 1), Homepage: "https://www.acme.de",
			Gender: domain.GenderMale, MaritalStatus: domain.MaritalSingle,
			Interests: []domain.Interest{domain.InterestTravel},
			Revenue:   &domain.Revenue{Amount: decimal.RequireFromString("0"), Currency: "EUR"},
			Address:   domain.Address{PostalCode: "11111", City: "Aachen"},
		},
		{
			LastName: "Alpha", Email: "alpha2@acme.edu", Category: 2,
			Gender: domain.GenderOther, MaritalStatus: domain.MaritalDivorced,
			Interests: []domain.Interest{},
			Revenue:   &domain.Revenue{Amount: decimal.RequireFromString("999.99"), Currency: "USD"},
			Address:   domain.Address{PostalCode: "22222", City: "Berlin"},
		},
		{
			LastName: "Delta-Epsilon", Email: "delta@acme.uk", Category: 3,
			BirthDate: date(1990, time.July, 14),
			Gender:    domain.GenderFemale, MaritalStatus: domain.MaritalWidowed,
			Interests: []domain.Interest{domain.InterestReading, domain.InterestTravel},
			Address:   domain.Address{PostalCode: "33333", City: "Dresden"},
		},
		{
			LastName: "von Phi", Email: "phi@acme.ch", Category: 9, Newsletter: true,
			Gender:    domain.GenderMale,
			Interests: []domain.Interest{domain.InterestSport},
			Revenue:   &domain.Revenue{Amount: decimal.RequireFromString("50000"), Currency: "CHF"},
			Address:   domain.Address{PostalCode: "44444", City: "Freiburg"},
		},
	}
}

// Seed 经写服务插入示例数据；已存在的 email 跳过
func Seed(ctx context.Context, w *service.WriteService, log *zap.Logger) (created int, err error) {
	for _, p := range SamplePhysicians() {
		res, err := w.Create(ctx, p)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", p.Email, err)
		}
		switch r := res.(type) {
		case service.Created:
			created++
			log.Info("seeded physician", zap.String("id", r.Physician.ID.String()), zap.String("email", p.Email))
		case service.EmailExists:
			log.Info("seed skipped, email exists", zap.String("email", r.Email))
		case service.ConstraintViolations:
			return created, fmt.Errorf("seed %s: %d constraint violations", p.Email, len(r.Violations))
		}
	}
	return created, nil
}
