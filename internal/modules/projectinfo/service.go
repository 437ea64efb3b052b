// Package projectinfo owns the project header copied onto every
// concentration sheet.
package projectinfo

import (
	"context"
	"errors"
	"strings"

	"boqtracker/internal/domain"
	"boqtracker/internal/pkg/logger"
	"boqtracker/internal/pkg/validator"
	"boqtracker/internal/repository"
)

type UpdateRequest struct {
	ProjectName            *string `json:"project_name" validate:"omitempty,max=255"`
	ContractorInChargeName *string `json:"contractor_in_charge_name" validate:"omitempty,max=255"`
	ContractNo             *string `json:"contract_no" validate:"omitempty,max=128"`
	DeveloperName          *string `json:"developer_name" validate:"omitempty,max=255"`
}

// UpdateResult is the stored record and the number of sheets it was pushed to.
type UpdateResult struct {
	Info          domain.ProjectInfo `json:"info"`
	SheetsUpdated int64              `json:"sheets_updated"`
}

type Service struct {
	store *repository.Store
	log   *logger.Logger
}

func NewService(store *repository.Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log.With("module", "projectinfo")}
}

// Get returns the record, or a zero record when none was saved yet.
func (s *Service) Get(ctx context.Context) (*domain.ProjectInfo, error) {
	info, err := s.store.ProjectInfo.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.ProjectInfo{}, nil
	}
	return info, err
}

// Update saves the given fields and pushes the non-empty ones onto every
// concentration sheet in the same transaction.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	if err := validator.Check("project info", req); err != nil {
		return nil, err
	}

	res := &UpdateResult{}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		info, err := tx.ProjectInfo.Get(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			info = &domain.ProjectInfo{}
		} else if err != nil {
			return err
		}

		set := func(dst *string, v *string) {
			if v != nil {
				*dst = strings.TrimSpace(*v)
			}
		}
		set(&info.ProjectName, req.ProjectName)
		set(&info.ContractorInChargeName, req.ContractorInChargeName)
		set(&info.ContractNo, req.ContractNo)
		set(&info.DeveloperName, req.DeveloperName)

		if err := tx.ProjectInfo.Save(ctx, info); err != nil {
			return err
		}
		n, err := tx.ConcentrationSheets.ApplyProjectInfo(ctx, info)
		if err != nil {
			return err
		}
		res.Info = *info
		res.SheetsUpdated = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("project info updated", "sheets_updated", res.SheetsUpdated)
	return res, nil
}
