package http

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shorturls/internal/entity"
	"github.com/vadimbarashkov/shorturls/internal/usecase"
)

type MockURLUseCase struct {
	mock.Mock
}

func (uc *MockURLUseCase) CreateShortURL(ctx context.Context, params usecase.CreateParams) (*entity.URL, error) {
	args := uc.Called(ctx, params)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (uc *MockURLUseCase) ResolveAndTrack(ctx context.Context, shortCode string, cc entity.ClickContext) (*entity.URL, error) {
	args := uc.Called(ctx, shortCode, cc)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (uc *MockURLUseCase) GetStats(ctx context.Context, shortCode string) (*entity.URLStats, error) {
	args := uc.Called(ctx, shortCode)
	stats, _ := args.Get(0).(*entity.URLStats)
	return stats, args.Error(1)
}

func (uc *MockURLUseCase) DeleteShortURL(ctx context.Context, shortCode string) error {
	args := uc.Called(ctx, shortCode)
	return args.Error(0)
}
