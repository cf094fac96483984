package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shorturls/internal/entity"
	"github.com/vadimbarashkov/shorturls/internal/ledger"
	"github.com/vadimbarashkov/shorturls/internal/registry"
)

type URLUseCaseTestSuite struct {
	suite.Suite
	errUnknown   error
	now          time.Time
	url          *entity.URL
	registryMock *MockCodeRegistry
	ledgerMock   *MockClickLedger
	locatorMock  *MockLocator
	uc           *URLUseCase
}

func (suite *URLUseCaseTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
	suite.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	suite.url = &entity.URL{
		ShortCode:   "abc123",
		OriginalURL: "https://example.com",
		CreatedAt:   suite.now,
		ExpiresAt:   suite.now.Add(30 * time.Minute),
	}
}

func (suite *URLUseCaseTestSuite) SetupSubTest() {
	suite.registryMock = new(MockCodeRegistry)
	suite.ledgerMock = new(MockClickLedger)
	suite.locatorMock = new(MockLocator)
	suite.uc = New(suite.registryMock, suite.ledgerMock,
		WithClock(func() time.Time { return suite.now }),
		WithLocator(suite.locatorMock),
	)
}

func (suite *URLUseCaseTestSuite) TearDownSubTest() {
	suite.registryMock.AssertExpectations(suite.T())
	suite.ledgerMock.AssertExpectations(suite.T())
	suite.locatorMock.AssertExpectations(suite.T())
}

func (suite *URLUseCaseTestSuite) TestCreateShortURL() {
	params := registry.CreateParams{
		OriginalURL:     "https://example.com",
		ValidityMinutes: entity.DefaultValidityMinutes,
	}

	suite.Run("validation error", func() {
		suite.registryMock.
			On("Create", params, suite.now).
			Once().
			Return(nil, entity.ErrInvalidURL)

		url, err := suite.uc.CreateShortURL(context.Background(), CreateParams{OriginalURL: "https://example.com"})

		suite.ErrorIs(err, entity.ErrInvalidURL)
		suite.Nil(url)
	})

	suite.Run("explicit validity and custom code", func() {
		validity := 5
		custom := registry.CreateParams{
			OriginalURL:     "https://example.com",
			ValidityMinutes: 5,
			CustomCode:      "promo",
		}

		suite.registryMock.
			On("Create", custom, suite.now).
			Once().
			Return(nil, entity.ErrShortCodeExists)

		url, err := suite.uc.CreateShortURL(context.Background(), CreateParams{
			OriginalURL:     "https://example.com",
			ValidityMinutes: &validity,
			CustomCode:      "promo",
		})

		suite.ErrorIs(err, entity.ErrShortCodeExists)
		suite.Nil(url)
	})

	suite.Run("ledger init error rolls back", func() {
		suite.registryMock.
			On("Create", params, suite.now).
			Once().
			Return(suite.url, nil)
		suite.ledgerMock.
			On("InitEntry", "abc123").
			Once().
			Return(ledger.ErrEntryExists)
		suite.registryMock.
			On("Delete", "abc123").
			Once().
			Return(nil)

		url, err := suite.uc.CreateShortURL(context.Background(), CreateParams{OriginalURL: "https://example.com"})

		suite.ErrorIs(err, entity.ErrInvariantViolation)
		suite.ErrorIs(err, ledger.ErrEntryExists)
		suite.Nil(url)
	})

	suite.Run("rollback error is reported", func() {
		suite.registryMock.
			On("Create", params, suite.now).
			Once().
			Return(suite.url, nil)
		suite.ledgerMock.
			On("InitEntry", "abc123").
			Once().
			Return(ledger.ErrEntryExists)
		suite.registryMock.
			On("Delete", "abc123").
			Once().
			Return(suite.errUnknown)

		url, err := suite.uc.CreateShortURL(context.Background(), CreateParams{OriginalURL: "https://example.com"})

		suite.ErrorIs(err, entity.ErrInvariantViolation)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.registryMock.
			On("Create", params, suite.now).
			Once().
			Return(suite.url, nil)
		suite.ledgerMock.
			On("InitEntry", "abc123").
			Once().
			Return(nil)

		url, err := suite.uc.CreateShortURL(context.Background(), CreateParams{OriginalURL: "https://example.com"})

		suite.NoError(err)
		suite.Equal(suite.url, url)
	})
}

func (suite *URLUseCaseTestSuite) TestResolveAndTrack() {
	cc := entity.ClickContext{
		UserAgent:  "curl/8.0",
		RemoteAddr: "203.0.113.7:5000",
	}

	suite.Run("url not found", func() {
		suite.registryMock.
			On("Resolve", "abc123", suite.now).
			Once().
			Return(nil, entity.ErrURLNotFound)

		url, err := suite.uc.ResolveAndTrack(context.Background(), "abc123", cc)

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("missing ledger entry", func() {
		suite.registryMock.
			On("Resolve", "abc123", suite.now).
			Once().
			Return(suite.url, nil)
		suite.locatorMock.
			On("Locate", "203.0.113.7:5000").
			Once().
			Return(nil)
		suite.ledgerMock.
			On("RecordClick", "abc123", mock.Anything).
			Once().
			Return(ledger.ErrEntryNotFound)

		url, err := suite.uc.ResolveAndTrack(context.Background(), "abc123", cc)

		suite.ErrorIs(err, entity.ErrInvariantViolation)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		loc := &entity.Location{Country: "US", Region: "CA", City: "San Jose", Timezone: "America/Los_Angeles"}

		suite.registryMock.
			On("Resolve", "abc123", suite.now).
			Once().
			Return(suite.url, nil)
		suite.locatorMock.
			On("Locate", "203.0.113.7:5000").
			Once().
			Return(loc)
		suite.ledgerMock.
			On("RecordClick", "abc123", entity.Click{
				Timestamp: suite.now,
				Referrer:  entity.DirectReferrer,
				Location:  loc,
				UserAgent: "curl/8.0",
			}).
			Once().
			Return(nil)

		url, err := suite.uc.ResolveAndTrack(context.Background(), "abc123", cc)

		suite.NoError(err)
		suite.Equal("https://example.com", url.OriginalURL)
	})
}

func (suite *URLUseCaseTestSuite) TestGetStats() {
	suite.Run("url not found", func() {
		suite.registryMock.
			On("Get", "abc123").
			Once().
			Return(nil, entity.ErrURLNotFound)

		stats, err := suite.uc.GetStats(context.Background(), "abc123")

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(stats)
	})

	suite.Run("missing ledger entry", func() {
		suite.registryMock.
			On("Get", "abc123").
			Once().
			Return(suite.url, nil)
		suite.ledgerMock.
			On("Entry", "abc123").
			Once().
			Return(nil, ledger.ErrEntryNotFound)

		stats, err := suite.uc.GetStats(context.Background(), "abc123")

		suite.ErrorIs(err, entity.ErrInvariantViolation)
		suite.Nil(stats)
	})

	suite.Run("success", func() {
		suite.registryMock.
			On("Get", "abc123").
			Once().
			Return(suite.url, nil)
		suite.ledgerMock.
			On("Entry", "abc123").
			Once().
			Return(&entity.ClickLedgerEntry{
				TotalClicks: 1,
				Clicks:      []entity.Click{{Timestamp: suite.now, Referrer: entity.DirectReferrer}},
			}, nil)

		stats, err := suite.uc.GetStats(context.Background(), "abc123")

		suite.NoError(err)
		suite.Equal("abc123", stats.ShortCode)
		suite.Equal(int64(1), stats.TotalClicks)
		suite.Len(stats.Clicks, 1)
		suite.True(stats.IsActive)
	})
}

func (suite *URLUseCaseTestSuite) TestDeleteShortURL() {
	suite.Run("url not found", func() {
		suite.registryMock.
			On("Delete", "abc123").
			Once().
			Return(entity.ErrURLNotFound)

		err := suite.uc.DeleteShortURL(context.Background(), "abc123")

		suite.ErrorIs(err, entity.ErrURLNotFound)
	})

	suite.Run("missing ledger entry", func() {
		suite.registryMock.
			On("Delete", "abc123").
			Once().
			Return(nil)
		suite.ledgerMock.
			On("DeleteEntry", "abc123").
			Once().
			Return(ledger.ErrEntryNotFound)

		err := suite.uc.DeleteShortURL(context.Background(), "abc123")

		suite.ErrorIs(err, entity.ErrInvariantViolation)
	})

	suite.Run("success", func() {
		suite.registryMock.
			On("Delete", "abc123").
			Once().
			Return(nil)
		suite.ledgerMock.
			On("DeleteEntry", "abc123").
			Once().
			Return(nil)

		err := suite.uc.DeleteShortURL(context.Background(), "abc123")

		suite.NoError(err)
	})
}

func (suite *URLUseCaseTestSuite) TestSweepExpired() {
	suite.Run("nothing expired", func() {
		suite.registryMock.
			On("SweepExpired", suite.now).
			Once().
			Return(nil)

		n, err := suite.uc.SweepExpired(context.Background())

		suite.NoError(err)
		suite.Zero(n)
	})

	suite.Run("missing ledger entry", func() {
		suite.registryMock.
			On("SweepExpired", suite.now).
			Once().
			Return([]string{"abc123", "def456"})
		suite.ledgerMock.
			On("DeleteEntry", "abc123").
			Once().
			Return(nil)
		suite.ledgerMock.
			On("DeleteEntry", "def456").
			Once().
			Return(ledger.ErrEntryNotFound)

		n, err := suite.uc.SweepExpired(context.Background())

		suite.ErrorIs(err, entity.ErrInvariantViolation)
		suite.Equal(2, n)
	})

	suite.Run("success", func() {
		suite.registryMock.
			On("SweepExpired", suite.now).
			Once().
			Return([]string{"abc123"})
		suite.ledgerMock.
			On("DeleteEntry", "abc123").
			Once().
			Return(nil)

		n, err := suite.uc.SweepExpired(context.Background())

		suite.NoError(err)
		suite.Equal(1, n)
	})
}

func TestURLUseCase(t *testing.T) {
	suite.Run(t, new(URLUseCaseTestSuite))
}
