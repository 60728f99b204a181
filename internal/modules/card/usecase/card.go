package usecase

import (
	"context"
	"fmt"
	"time"

	"progresscard/internal/modules/card/domain"
	"progresscard/internal/modules/card/dto"
	cardin "progresscard/internal/modules/card/port/in"
	"progresscard/internal/modules/card/service"
	"progresscard/internal/platform/clock"
	apperrors "progresscard/internal/platform/errors"
)

type Interactor struct {
	svc   *service.CardService
	clock clock.Clock
}

func NewInteractor(svc *service.CardService, c clock.Clock) cardin.Usecase {
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Interactor{svc: svc, clock: c}
}

func (i *Interactor) Card(ctx context.Context, input dto.CardInput) (dto.CardOutput, error) {
	if err := domain.ValidateUserID(input.UserID); err != nil {
		return dto.CardOutput{}, err
	}
	ref, err := i.svc.GetOrRender(ctx, input.UserID, input.Refresh)
	if err != nil {
		return dto.CardOutput{}, err
	}
	return toCardOutput(input.UserID, ref), nil
}

// Page reads progress once: from the render when one happened, otherwise
// after the cache hit.
func (i *Interactor) Page(ctx context.Context, input dto.CardInput) (dto.PageOutput, error) {
	if err := domain.ValidateUserID(input.UserID); err != nil {
		return dto.PageOutput{}, err
	}
	res, err := i.svc.Resolve(ctx, input.UserID, input.Refresh)
	if err != nil {
		return dto.PageOutput{}, err
	}
	card := toCardOutput(input.UserID, res.Ref)
	if card.Default {
		return dto.PageOutput{Card: card, Title: domain.DefaultShareTitle}, nil
	}
	var progress domain.Progress
	ok := res.Progress != nil
	if ok {
		progress = *res.Progress
	} else if progress, ok, err = i.svc.Progress(ctx, input.UserID); err != nil {
		return dto.PageOutput{}, err
	}
	out := dto.PageOutput{Card: card, Found: ok, Title: domain.DefaultShareTitle}
	if ok {
		out.DisplayName = progress.DisplayName
		out.Percent = progress.Percent
		out.Title = domain.ShareTitle(progress.DisplayName, progress.Percent)
	}
	return out, nil
}

func (i *Interactor) Fallback() dto.PageOutput {
	return dto.PageOutput{
		Card:  toCardOutput("", i.svc.DefaultRef()),
		Title: domain.DefaultShareTitle,
	}
}

func (i *Interactor) Artifact(ctx context.Context, filename string) (dto.ArtifactOutput, error) {
	userID, _, _, err := domain.ParseName(filename)
	if err != nil {
		return dto.ArtifactOutput{}, err
	}
	refs, err := i.svc.Artifacts(ctx, userID)
	if err != nil {
		return dto.ArtifactOutput{}, err
	}
	for _, ref := range refs {
		if ref.Filename == filename {
			return i.toArtifactOutput(ref, i.clock.Now()), nil
		}
	}
	return dto.ArtifactOutput{}, fmt.Errorf("artifact %q: %w", filename, apperrors.ErrNotFound)
}

func (i *Interactor) List(ctx context.Context) ([]dto.ArtifactOutput, error) {
	refs, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	now := i.clock.Now()
	out := make([]dto.ArtifactOutput, 0, len(refs))
	for _, ref := range refs {
		out = append(out, i.toArtifactOutput(ref, now))
	}
	return out, nil
}

func (i *Interactor) Evict(ctx context.Context, userID string) ([]dto.EvictOutput, error) {
	users := []string{userID}
	if userID == "" {
		refs, err := i.svc.List(ctx)
		if err != nil {
			return nil, err
		}
		users = users[:0]
		for _, ref := range refs {
			if len(users) == 0 || users[len(users)-1] != ref.UserID {
				users = append(users, ref.UserID)
			}
		}
	} else if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}

	out := make([]dto.EvictOutput, 0, len(users))
	for _, uid := range users {
		ev, err := i.svc.Evict(ctx, uid)
		if err != nil {
			return out, err
		}
		out = append(out, dto.EvictOutput{UserID: uid, Kept: ev.Kept.Filename, Removed: ev.Removed})
	}
	return out, nil
}

func (i *Interactor) toArtifactOutput(ref domain.ArtifactRef, now time.Time) dto.ArtifactOutput {
	return dto.ArtifactOutput{
		UserID:      ref.UserID,
		Filename:    ref.Filename,
		Path:        ref.Path,
		GeneratedAt: ref.GeneratedAt,
		ModTime:     ref.ModTime,
		Stale:       domain.IsStale(&ref, now, i.svc.MaxAge()),
	}
}

func toCardOutput(userID string, ref domain.ArtifactRef) dto.CardOutput {
	out := dto.CardOutput{UserID: userID, Filename: ref.Filename, Default: ref.Default}
	if !ref.Default {
		out.GeneratedAt = ref.GeneratedAt
	}
	return out
}
