package usecase

import (
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shorturls/internal/entity"
	"github.com/vadimbarashkov/shorturls/internal/registry"
)

type MockCodeRegistry struct {
	mock.Mock
}

func (r *MockCodeRegistry) Create(params registry.CreateParams, now time.Time) (*entity.URL, error) {
	args := r.Called(params, now)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (r *MockCodeRegistry) Resolve(shortCode string, now time.Time) (*entity.URL, error) {
	args := r.Called(shortCode, now)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (r *MockCodeRegistry) Get(shortCode string) (*entity.URL, error) {
	args := r.Called(shortCode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (r *MockCodeRegistry) Delete(shortCode string) error {
	args := r.Called(shortCode)
	return args.Error(0)
}

func (r *MockCodeRegistry) SweepExpired(now time.Time) []string {
	args := r.Called(now)
	codes, _ := args.Get(0).([]string)
	return codes
}

type MockClickLedger struct {
	mock.Mock
}

func (l *MockClickLedger) InitEntry(shortCode string) error {
	args := l.Called(shortCode)
	return args.Error(0)
}

func (l *MockClickLedger) RecordClick(shortCode string, click entity.Click) error {
	args := l.Called(shortCode, click)
	return args.Error(0)
}

func (l *MockClickLedger) Entry(shortCode string) (*entity.ClickLedgerEntry, error) {
	args := l.Called(shortCode)
	entry, _ := args.Get(0).(*entity.ClickLedgerEntry)
	return entry, args.Error(1)
}

func (l *MockClickLedger) DeleteEntry(shortCode string) error {
	args := l.Called(shortCode)
	return args.Error(0)
}

type MockLocator struct {
	mock.Mock
}

func (l *MockLocator) Locate(remoteAddr string) *entity.Location {
	args := l.Called(remoteAddr)
	loc, _ := args.Get(0).(*entity.Location)
	return loc
}
