package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sairex/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Cache domain.Cache `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	cache domain.Cache
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		repo:  p.Repo,
		cache: p.Cache,
	}
}

func (s *Service) FindOrganization(ctx context.Context, code string) (domain.Organization, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Organization{}, domain.ErrInvalidCode
	}

	if s.cache != nil {
		org, err := s.cache.GetOrganization(ctx, code)
		if err != nil {
			s.log.Warn("organization cache read failed", zap.String("org_code", code), zap.Error(err))
		} else if org != nil {
			return *org, nil
		}
	}

	org, err := s.repo.FindOrganizationByCode(ctx, s.db, code)
	if err != nil {
		return domain.Organization{}, err
	}
	if org == nil {
		return domain.Organization{}, domain.OrganizationNotFound(code)
	}

	if s.cache != nil {
		if err := s.cache.SetOrganization(ctx, org); err != nil {
			s.log.Warn("organization cache write failed", zap.String("org_code", code), zap.Error(err))
		}
	}
	return *org, nil
}

func (s *Service) FindCampus(ctx context.Context, code string) (domain.Campus, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Campus{}, domain.ErrInvalidCode
	}

	if s.cache != nil {
		campus, err := s.cache.GetCampus(ctx, code)
		if err != nil {
			s.log.Warn("campus cache read failed", zap.String("campus_code", code), zap.Error(err))
		} else if campus != nil {
			return *campus, nil
		}
	}

	campus, err := s.repo.FindCampusByCode(ctx, s.db, code)
	if err != nil {
		return domain.Campus{}, err
	}
	if campus == nil {
		return domain.Campus{}, domain.CampusNotFound(code)
	}

	if s.cache != nil {
		if err := s.cache.SetCampus(ctx, campus); err != nil {
			s.log.Warn("campus cache write failed", zap.String("campus_code", code), zap.Error(err))
		}
	}
	return *campus, nil
}

func (s *Service) FindStudent(ctx context.Context, admissionNo string, campusID snowflake.ID) (domain.Student, error) {
	admissionNo = strings.TrimSpace(admissionNo)
	if admissionNo == "" {
		return domain.Student{}, domain.ErrInvalidCode
	}
	if campusID == 0 {
		return domain.Student{}, domain.ErrInvalidID
	}

	student, err := s.repo.FindStudent(ctx, s.db, admissionNo, campusID)
	if err != nil {
		return domain.Student{}, err
	}
	if student == nil {
		return domain.Student{}, domain.StudentNotFound(admissionNo)
	}
	return *student, nil
}

func (s *Service) GetOrganization(ctx context.Context, id snowflake.ID) (domain.Organization, error) {
	if id == 0 {
		return domain.Organization{}, domain.ErrInvalidID
	}
	org, err := s.repo.FindOrganizationByID(ctx, s.db, id)
	if err != nil {
		return domain.Organization{}, err
	}
	if org == nil {
		return domain.Organization{}, domain.OrganizationNotFound(id.String())
	}
	return *org, nil
}

func (s *Service) GetCampus(ctx context.Context, id snowflake.ID) (domain.Campus, error) {
	if id == 0 {
		return domain.Campus{}, domain.ErrInvalidID
	}
	campus, err := s.repo.FindCampusByID(ctx, s.db, id)
	if err != nil {
		return domain.Campus{}, err
	}
	if campus == nil {
		return domain.Campus{}, domain.CampusNotFound(id.String())
	}
	return *campus, nil
}

func (s *Service) GetStudent(ctx context.Context, id snowflake.ID) (domain.Student, error) {
	if id == 0 {
		return domain.Student{}, domain.ErrInvalidID
	}
	student, err := s.repo.FindStudentByID(ctx, s.db, id)
	if err != nil {
		return domain.Student{}, err
	}
	if student == nil {
		return domain.Student{}, domain.StudentNotFound(id.String())
	}
	return *student, nil
}

func (s *Service) ListStudents(ctx context.Context, campusID snowflake.ID, grade string) ([]domain.Student, error) {
	if campusID == 0 {
		return nil, domain.ErrInvalidID
	}
	grade = strings.TrimSpace(grade)
	if grade == "" {
		return nil, domain.ErrInvalidGrade
	}

	items, err := s.repo.ListStudents(ctx, s.db, campusID, grade)
	if err != nil {
		return nil, err
	}
	students := make([]domain.Student, 0, len(items))
	for _, item := range items {
		students = append(students, *item)
	}
	return students, nil
}
