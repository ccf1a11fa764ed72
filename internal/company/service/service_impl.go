package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smetelco/portal/internal/clock"
	companydomain "github.com/smetelco/portal/internal/company/domain"
	linedomain "github.com/smetelco/portal/internal/line/domain"
	"github.com/smetelco/portal/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	companies repository.Repository[companydomain.Company]
	lines     repository.Repository[linedomain.Line]
}

func NewService(p Params) companydomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("company.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		companies: repository.ProvideStore[companydomain.Company](p.DB),
		lines:     repository.ProvideStore[linedomain.Line](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req companydomain.CreateRequest) (*companydomain.Company, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, companydomain.ErrInvalidName
	}
	if req.MonthlyBudget < 0 {
		return nil, companydomain.ErrInvalidBudget
	}

	now := s.clock.Now().UTC()
	company := &companydomain.Company{
		ID:             s.genID.Generate(),
		Name:           strings.TrimSpace(req.Name),
		ContractNumber: strings.TrimSpace(req.ContractNumber),
		MonthlyBudget:  req.MonthlyBudget,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *Service) Get(ctx context.Context, id string) (*companydomain.CompanyWithLines, error) {
	company, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	lines, err := s.lines.Find(ctx, &linedomain.Line{CompanyID: company.ID})
	if err != nil {
		return nil, err
	}

	out := &companydomain.CompanyWithLines{Company: *company, Lines: make([]linedomain.Line, 0, len(lines))}
	for _, line := range lines {
		if line == nil {
			continue
		}
		out.Lines = append(out.Lines, *line)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, req companydomain.UpdateRequest) (*companydomain.Company, error) {
	company, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, companydomain.ErrInvalidName
		}
		company.Name = strings.TrimSpace(*req.Name)
	}
	if req.ContractNumber != nil {
		company.ContractNumber = strings.TrimSpace(*req.ContractNumber)
	}
	if req.MonthlyBudget != nil {
		if *req.MonthlyBudget < 0 {
			return nil, companydomain.ErrInvalidBudget
		}
		company.MonthlyBudget = *req.MonthlyBudget
	}
	company.UpdatedAt = s.clock.Now().UTC()

	if err := s.db.WithContext(ctx).Save(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	company, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.companies.Delete(ctx, int64(company.ID))
}

func (s *Service) find(ctx context.Context, id string) (*companydomain.Company, error) {
	companyID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || companyID == 0 {
		return nil, companydomain.ErrInvalidID
	}
	company, err := s.companies.FindOne(ctx, &companydomain.Company{ID: companyID})
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, companydomain.ErrNotFound
	}
	return company, nil
}
