package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sairex/internal/feerule/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("feerule.service"),
		repo: p.Repo,
	}
}

func (s *Service) Lookup(ctx context.Context, campusID snowflake.ID, grade, frequency string) (domain.Resolution, error) {
	key, err := ruleKey(campusID, grade, frequency)
	if err != nil {
		return domain.Resolution{}, err
	}

	matches, err := s.repo.FindActive(ctx, s.db, key)
	if err != nil {
		return domain.Resolution{}, err
	}

	resolution := domain.NewResolution(key, matches)
	if resolution.Kind == domain.ResolutionAmbiguous {
		s.log.Warn("ambiguous fee rule",
			zap.String("campus_id", campusID.String()),
			zap.String("grade", key.Grade),
			zap.String("frequency", string(key.Frequency)),
			zap.Int("candidates", len(matches)),
		)
	}
	return resolution, nil
}

func (s *Service) Resolve(ctx context.Context, campusID snowflake.ID, grade, frequency string) (domain.FeeStructure, error) {
	resolution, err := s.Lookup(ctx, campusID, grade, frequency)
	if err != nil {
		return domain.FeeStructure{}, err
	}
	return resolution.Structure()
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.FeeStructure, error) {
	structure, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.FeeStructure{}, err
	}
	if structure == nil {
		return domain.FeeStructure{}, domain.ErrNotFound
	}
	return *structure, nil
}

func (s *Service) GetHead(ctx context.Context, id snowflake.ID) (domain.FeeHead, error) {
	head, err := s.repo.FindHeadByID(ctx, s.db, id)
	if err != nil {
		return domain.FeeHead{}, err
	}
	if head == nil {
		return domain.FeeHead{}, domain.ErrNotFound
	}
	return *head, nil
}

func ruleKey(campusID snowflake.ID, grade, frequency string) (domain.RuleKey, error) {
	if campusID == 0 {
		return domain.RuleKey{}, domain.ErrInvalidCampus
	}
	grade = strings.TrimSpace(grade)
	if grade == "" {
		return domain.RuleKey{}, domain.ErrInvalidGrade
	}
	freq, err := domain.ParseFrequency(frequency)
	if err != nil {
		return domain.RuleKey{}, err
	}
	return domain.RuleKey{CampusID: campusID, Grade: grade, Frequency: freq}, nil
}
