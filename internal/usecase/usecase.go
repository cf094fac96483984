package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vadimbarashkov/shorturls/internal/entity"
	"github.com/vadimbarashkov/shorturls/internal/registry"
)

type codeRegistry interface {
	Create(params registry.CreateParams, now time.Time) (*entity.URL, error)
	Resolve(shortCode string, now time.Time) (*entity.URL, error)
	Get(shortCode string) (*entity.URL, error)
	Delete(shortCode string) error
	SweepExpired(now time.Time) []string
}

type clickLedger interface {
	InitEntry(shortCode string) error
	RecordClick(shortCode string, click entity.Click) error
	Entry(shortCode string) (*entity.ClickLedgerEntry, error)
	DeleteEntry(shortCode string) error
}

// Locator resolves a client address to an approximate location.
// It returns nil when the address cannot be located.
type Locator interface {
	Locate(remoteAddr string) *entity.Location
}

// nopLocator is the default locator. It keeps the use case free of adapter
// imports; app wires geoip.Locator or geoip.Nop explicitly.
type nopLocator struct{}

func (nopLocator) Locate(string) *entity.Location { return nil }

// CreateParams holds the input of URLUseCase.CreateShortURL.
type CreateParams struct {
	OriginalURL     string
	ValidityMinutes *int   // ValidityMinutes falls back to the default validity when nil.
	CustomCode      string // CustomCode is optional.
}

// Option configures a URLUseCase built by New.
type Option func(*URLUseCase)

// WithClock sets the time source used for creation, expiry and click timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *URLUseCase) {
		uc.now = now
	}
}

// WithLocator sets the geo-IP locator used to annotate clicks.
func WithLocator(locator Locator) Option {
	return func(uc *URLUseCase) {
		uc.locator = locator
	}
}

// WithDefaultValidity sets the validity window, in minutes, applied when
// CreateParams.ValidityMinutes is nil.
func WithDefaultValidity(minutes int) Option {
	return func(uc *URLUseCase) {
		uc.defaultValidity = minutes
	}
}

// URLUseCase coordinates the lifecycle of short URLs across the code
// registry and the click ledger.
//
// Creation, deletion and sweeping hold mu for writing, so a record and its
// ledger entry always appear and disappear together. Resolution and stats
// hold mu for reading and may run concurrently with each other.
type URLUseCase struct {
	mu              sync.RWMutex
	registry        codeRegistry
	ledger          clickLedger
	locator         Locator
	now             func() time.Time
	defaultValidity int
}

// New returns a URLUseCase over registry and ledger. Without options it uses
// the wall clock, no locator and the default validity of 30 minutes.
func New(registry codeRegistry, ledger clickLedger, opts ...Option) *URLUseCase {
	uc := &URLUseCase{
		registry:        registry,
		ledger:          ledger,
		locator:         nopLocator{},
		now:             time.Now,
		defaultValidity: entity.DefaultValidityMinutes,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// CreateShortURL registers a URL and its empty click ledger entry together.
// If the ledger entry cannot be created the URL is rolled back and the error
// wraps entity.ErrInvariantViolation.
func (uc *URLUseCase) CreateShortURL(ctx context.Context, params CreateParams) (*entity.URL, error) {
	const op = "usecase.URLUseCase.CreateShortURL"

	validity := uc.defaultValidity
	if params.ValidityMinutes != nil {
		validity = *params.ValidityMinutes
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	url, err := uc.registry.Create(registry.CreateParams{
		OriginalURL:     params.OriginalURL,
		ValidityMinutes: validity,
		CustomCode:      params.CustomCode,
	}, uc.now())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create url: %w", op, err)
	}

	if err := uc.ledger.InitEntry(url.ShortCode); err != nil {
		if rbErr := uc.registry.Delete(url.ShortCode); rbErr != nil {
			err = errors.Join(err, rbErr)
		}

		return nil, fmt.Errorf("%s: %w: failed to init ledger entry: %w", op, entity.ErrInvariantViolation, err)
	}

	return url, nil
}

// ResolveAndTrack returns the URL for shortCode and records a click built
// from cc. A single timestamp is used for the activity check and the click.
func (uc *URLUseCase) ResolveAndTrack(ctx context.Context, shortCode string, cc entity.ClickContext) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveAndTrack"

	now := uc.now()

	uc.mu.RLock()
	defer uc.mu.RUnlock()

	url, err := uc.registry.Resolve(shortCode, now)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	referrer := cc.Referrer
	if referrer == "" {
		referrer = entity.DirectReferrer
	}

	click := entity.Click{
		Timestamp: now,
		Referrer:  referrer,
		Location:  uc.locator.Locate(cc.RemoteAddr),
		UserAgent: cc.UserAgent,
	}

	if err := uc.ledger.RecordClick(shortCode, click); err != nil {
		return nil, fmt.Errorf("%s: %w: failed to record click: %w", op, entity.ErrInvariantViolation, err)
	}

	return url, nil
}

// GetStats returns the URL joined with its clicks. Expired records that have
// not been swept yet are returned with IsActive set to false.
func (uc *URLUseCase) GetStats(ctx context.Context, shortCode string) (*entity.URLStats, error) {
	const op = "usecase.URLUseCase.GetStats"

	now := uc.now()

	uc.mu.RLock()
	defer uc.mu.RUnlock()

	url, err := uc.registry.Get(shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	entry, err := uc.ledger.Entry(shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: failed to get ledger entry: %w", op, entity.ErrInvariantViolation, err)
	}

	return &entity.URLStats{
		URL:              *url,
		ClickLedgerEntry: *entry,
		IsActive:         url.IsActiveAt(now),
	}, nil
}

// DeleteShortURL removes the URL and its click ledger entry, freeing the short code.
func (uc *URLUseCase) DeleteShortURL(ctx context.Context, shortCode string) error {
	const op = "usecase.URLUseCase.DeleteShortURL"

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.registry.Delete(shortCode); err != nil {
		return fmt.Errorf("%s: failed to delete url: %w", op, err)
	}

	if err := uc.ledger.DeleteEntry(shortCode); err != nil {
		return fmt.Errorf("%s: %w: failed to delete ledger entry: %w", op, entity.ErrInvariantViolation, err)
	}

	return nil
}

// SweepExpired removes expired records together with their ledger entries
// and returns the number of removed records.
func (uc *URLUseCase) SweepExpired(ctx context.Context) (int, error) {
	const op = "usecase.URLUseCase.SweepExpired"

	uc.mu.Lock()
	defer uc.mu.Unlock()

	removed := uc.registry.SweepExpired(uc.now())

	var errs []error
	for _, shortCode := range removed {
		if err := uc.ledger.DeleteEntry(shortCode); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return len(removed), fmt.Errorf("%s: %w: %w", op, entity.ErrInvariantViolation, errors.Join(errs...))
	}

	return len(removed), nil
}
