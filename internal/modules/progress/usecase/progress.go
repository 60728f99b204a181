package usecase

import (
	"context"

	"progresscard/internal/modules/progress/dto"
	progressin "progresscard/internal/modules/progress/port/in"
	progressout "progresscard/internal/modules/progress/port/out"
	"progresscard/internal/modules/progress/service"
)

type Interactor struct {
	svc    *service.ProgressService
	writer progressout.RecordWriter
}

// NewInteractor wires the usecase. writer may be nil for read-only stores,
// in which case Seed fails.
func NewInteractor(svc *service.ProgressService, writer progressout.RecordWriter) progressin.Usecase {
	return &Interactor{svc: svc, writer: writer}
}

func (i *Interactor) Fetch(ctx context.Context, input dto.FetchInput) (dto.ProgressOutput, error) {
	result, err := i.svc.Fetch(ctx, input.UserID)
	if err != nil {
		return dto.ProgressOutput{}, err
	}
	record, ok := result.Get()
	if !ok {
		return dto.ProgressOutput{UserID: input.UserID}, nil
	}
	return dto.ProgressOutput{
		Found:       true,
		UserID:      record.UserID,
		DisplayName: record.DisplayName,
		Answered:    record.Answered,
		Ratio:       record.Ratio,
		Percent:     record.Percent(),
	}, nil
}

func (i *Interactor) Seed(ctx context.Context, fixture dto.Fixture) (dto.SeedOutput, error) {
	n, err := service.Seed(ctx, i.writer, fixture)
	if err != nil {
		return dto.SeedOutput{Documents: n}, err
	}
	return dto.SeedOutput{Documents: n}, nil
}
