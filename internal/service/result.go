package service

import (
	"github.com/google/uuid"

	"physician-service/internal/domain"
)

// 各服务调用的结果类型：用接口 + 未导出的标记方法封闭取值范围，调用方用 type switch 穷举。

type FindByIDResult interface{ findByIDResult() }

type CreateResult interface{ createResult() }

type UpdateResult interface{ updateResult() }

type QueryBuilderResult interface{ queryBuilderResult() }

type Found struct{ Physician domain.Physician }

type NotFound struct{ ID uuid.UUID }

type Created struct{ Physician domain.Physician }

type Updated struct{ Physician domain.Physician }

type EmailExists struct{ Email string }

type ConstraintViolations struct{ Violations []Violation }

// NoFilter 没有任何查询参数
type NoFilter struct{}

type Success struct{ Query domain.Query }

// Failure 有参数但没有一个能转成条件，调用方按“无结果”处理
type Failure struct{}

func (Found) findByIDResult()    {}
func (NotFound) findByIDResult() {}

func (Created) createResult()              {}
func (EmailExists) createResult()          {}
func (ConstraintViolations) createResult() {}

func (Updated) updateResult()              {}
func (NotFound) updateResult()             {}
func (EmailExists) updateResult()          {}
func (ConstraintViolations) updateResult() {}

func (NoFilter) queryBuilderResult() {}
func (Success) queryBuilderResult()  {}
func (Failure) queryBuilderResult()  {}
