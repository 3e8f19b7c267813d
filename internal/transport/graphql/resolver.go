package graphql

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	gql "github.com/graph-gophers/graphql-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"physician-service/internal/domain"
	"physician-service/internal/service"
)

// 错误分类，放在 extensions.classification
const (
	ClassBadRequest = "BAD_REQUEST"
	ClassNotFound   = "NOT_FOUND"
	ClassInternal   = "INTERNAL_ERROR"
)

// resolverError 带 extensions 的 GraphQL 错误
type resolverError struct {
	msg string
	ext map[string]any
}

func (e *resolverError) Error() string              { return e.msg }
func (e *resolverError) Extensions() map[string]any { return e.ext }

func classified(class, msg string, extra map[string]any) error {
	ext := map[string]any{"classification": class}
	for k, v := range extra {
		ext[k] = v
	}
	return &resolverError{msg: msg, ext: ext}
}

// Resolver 根解析器：Query 与 Mutation 字段
type Resolver struct {
	read  *service.ReadService
	write *service.WriteService
	log   *zap.Logger
}

func NewResolver(read *service.ReadService, write *service.WriteService, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{read: read, write: write, log: log}
}

// ---- Query ----

func (r *Resolver) Physician(ctx context.Context, args struct{ ID gql.ID }) (*physicianResolver, error) {
	id, err := uuid.Parse(string(args.ID))
	if err != nil {
		return nil, classified(ClassNotFound, fmt.Sprintf("no physician with id %s", args.ID), nil)
	}
	res, err := r.read.FindByID(ctx, id)
	if err != nil {
		return nil, r.internal(err)
	}
	switch v := res.(type) {
	case service.Found:
		return &physicianResolver{p: v.Physician}, nil
	case service.NotFound:
		return nil, classified(ClassNotFound, fmt.Sprintf("no physician with id %s", v.ID), nil)
	}
	return nil, r.internal(fmt.Errorf("unexpected result %T", res))
}

type searchInput struct {
	Lastname *string
	Email    *string
}

func (r *Resolver) Physicians(ctx context.Context, args struct{ Input *searchInput }) (*[]*physicianResolver, error) {
	params := url.Values{}
	if in := args.Input; in != nil {
		if in.Lastname != nil && *in.Lastname != "" {
			params.Set(service.ParamLastName, *in.Lastname)
		}
		if in.Email != nil && *in.Email != "" {
			params.Set(service.ParamEmail, *in.Email)
		}
	}
	list, err := r.read.Find(ctx, params)
	if err != nil {
		return nil, r.internal(err)
	}
	if len(list) == 0 {
		return nil, classified(ClassNotFound, "no physicians found", nil)
	}
	out := make([]*physicianResolver, 0, len(list))
	for _, p := range list {
		out = append(out, &physicianResolver{p: p})
	}
	return &out, nil
}

// ---- Mutation ----

type addressInput struct {
	Plz  string
	City string
}

type revenueInput struct {
	Amount   string
	Currency string
}

type physicianInput struct {
	Lastname      string
	Email         string
	Category      *int32
	Newsletter    *bool
	Birthdate     *string
	Homepage      *string
	Gender        *string
	MaritalStatus *string
	Interests     *[]string
	Revenue       *revenueInput
	Address       addressInput
}

func (in physicianInput) toDomain() (domain.Physician, error) {
	p := domain.Physician{
		LastName:  in.Lastname,
		Email:     in.Email,
		Interests: []domain.Interest{},
		Address:   domain.Address{PostalCode: in.Address.Plz, City: in.Address.City},
	}
	if in.Category != nil {
		p.Category = int(*in.Category)
	}
	if in.Newsletter != nil {
		p.Newsletter = *in.Newsletter
	}
	if in.Homepage != nil {
		p.Homepage = *in.Homepage
	}
	if in.Gender != nil {
		p.Gender = domain.Gender(*in.Gender)
	}
	if in.MaritalStatus != nil {
		p.MaritalStatus = domain.MaritalStatus(*in.MaritalStatus)
	}
	if in.Interests != nil {
		for _, i := range *in.Interests {
			p.Interests = append(p.Interests, domain.Interest(i))
		}
	}
	if in.Birthdate != nil && *in.Birthdate != "" {
		t, err := time.Parse("2006-01-02", *in.Birthdate)
		if err != nil {
			return p, classified(ClassBadRequest, "birthdate must be yyyy-MM-dd", nil)
		}
		p.BirthDate = &t
	}
	if in.Revenue != nil {
		amount, err := decimal.NewFromString(in.Revenue.Amount)
		if err != nil {
			return p, classified(ClassBadRequest, "revenue amount is not a number", nil)
		}
		p.Revenue = &domain.Revenue{Amount: amount, Currency: in.Revenue.Currency}
	}
	return p, nil
}

type createPayload struct{ id uuid.UUID }

func (c *createPayload) ID() gql.ID { return gql.ID(c.id.String()) }

type updatePayload struct {
	id      uuid.UUID
	version int
}

func (u *updatePayload) ID() gql.ID     { return gql.ID(u.id.String()) }
func (u *updatePayload) Version() int32 { return int32(u.version) }

func (r *Resolver) Create(ctx context.Context, args struct{ Input physicianInput }) (*createPayload, error) {
	candidate, err := args.Input.toDomain()
	if err != nil {
		return nil, err
	}
	res, err := r.write.Create(ctx, candidate)
	if err != nil {
		return nil, r.internal(err)
	}
	switch v := res.(type) {
	case service.Created:
		return &createPayload{id: v.Physician.ID}, nil
	case service.ConstraintViolations:
		return nil, violationsError(v.Violations)
	case service.EmailExists:
		return nil, emailExistsError(v.Email)
	}
	return nil, r.internal(fmt.Errorf("unexpected result %T", res))
}

func (r *Resolver) Update(ctx context.Context, args struct {
	ID      gql.ID
	Version *int32
	Input   physicianInput
}) (*updatePayload, error) {
	id, err := uuid.Parse(string(args.ID))
	if err != nil {
		return nil, classified(ClassNotFound, fmt.Sprintf("no physician with id %s", args.ID), nil)
	}
	candidate, err := args.Input.toDomain()
	if err != nil {
		return nil, err
	}
	candidate.Version = domain.AnyVersion
	if args.Version != nil {
		candidate.Version = int(*args.Version)
	}

	res, err := r.write.Update(ctx, candidate, id)
	if errors.Is(err, domain.ErrVersionConflict) {
		return nil, classified(ClassBadRequest, "version is outdated", nil)
	}
	if err != nil {
		return nil, r.internal(err)
	}
	switch v := res.(type) {
	case service.Updated:
		return &updatePayload{id: v.Physician.ID, version: v.Physician.Version}, nil
	case service.NotFound:
		return nil, classified(ClassNotFound, fmt.Sprintf("no physician with id %s", v.ID), nil)
	case service.ConstraintViolations:
		return nil, violationsError(v.Violations)
	case service.EmailExists:
		return nil, emailExistsError(v.Email)
	}
	return nil, r.internal(fmt.Errorf("unexpected result %T", res))
}

func violationsError(vs []service.Violation) error {
	items := make([]map[string]any, 0, len(vs))
	for _, v := range vs {
		items = append(items, map[string]any{"key": v.Key, "field": v.Field, "message": v.Message})
	}
	return classified(ClassBadRequest, "constraint violations", map[string]any{"violations": items})
}

func emailExistsError(email string) error {
	return classified(ClassBadRequest, fmt.Sprintf("email %s already exists", email), map[string]any{"email": email})
}

// internal 超时与未知错误：对外只给分类，细节进日志
func (r *Resolver) internal(err error) error {
	if errors.Is(err, service.ErrTimeout) {
		r.log.Warn("graphql store timeout", zap.Error(err))
		return classified(ClassInternal, "a timeout occurred", nil)
	}
	r.log.Error("graphql resolver failed", zap.Error(err))
	return classified(ClassInternal, "internal error", nil)
}

// ---- 输出类型 ----

type physicianResolver struct{ p domain.Physician }

func (r *physicianResolver) ID() gql.ID        { return gql.ID(r.p.ID.String()) }
func (r *physicianResolver) Version() int32    { return int32(r.p.Version) }
func (r *physicianResolver) Lastname() string  { return r.p.LastName }
func (r *physicianResolver) Email() string     { return r.p.Email }
func (r *physicianResolver) Category() int32   { return int32(r.p.Category) }
func (r *physicianResolver) Newsletter() bool  { return r.p.Newsletter }
func (r *physicianResolver) Homepage() *string { return optional(r.p.Homepage) }
func (r *physicianResolver) Gender() *string   { return optional(string(r.p.Gender)) }

func (r *physicianResolver) MaritalStatus() *string { return optional(string(r.p.MaritalStatus)) }

func (r *physicianResolver) Birthdate() *string {
	if r.p.BirthDate == nil {
		return nil
	}
	s := r.p.BirthDate.Format("2006-01-02")
	return &s
}

func (r *physicianResolver) Interests() []string {
	out := make([]string, 0, len(r.p.Interests))
	for _, i := range r.p.Interests {
		out = append(out, string(i))
	}
	return out
}

func (r *physicianResolver) Revenue() *revenueResolver {
	if r.p.Revenue == nil {
		return nil
	}
	return &revenueResolver{r: *r.p.Revenue}
}

func (r *physicianResolver) Address() *addressResolver { return &addressResolver{a: r.p.Address} }

type revenueResolver struct{ r domain.Revenue }

func (r *revenueResolver) Amount() string   { return r.r.Amount.String() }
func (r *revenueResolver) Currency() string { return r.r.Currency }

type addressResolver struct{ a domain.Address }

func (r *addressResolver) Plz() string  { return r.a.PostalCode }
func (r *addressResolver) City() string { return r.a.City }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
