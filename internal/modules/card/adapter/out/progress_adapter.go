package out

import (
	"context"

	"progresscard/internal/modules/card/domain"
	cardout "progresscard/internal/modules/card/port/out"
	"progresscard/internal/modules/progress/dto"
	progressin "progresscard/internal/modules/progress/port/in"
)

type ProgressAdapter struct {
	progress progressin.Usecase
}

func NewProgressAdapter(progress progressin.Usecase) cardout.ProgressSource {
	return &ProgressAdapter{progress: progress}
}

func (a *ProgressAdapter) Fetch(ctx context.Context, userID string) (domain.Progress, bool, error) {
	out, err := a.progress.Fetch(ctx, dto.FetchInput{UserID: userID})
	if err != nil || !out.Found {
		return domain.Progress{}, false, err
	}
	return domain.Progress{
		UserID:      out.UserID,
		DisplayName: out.DisplayName,
		Ratio:       out.Ratio,
		Percent:     out.Percent,
	}, true, nil
}
