// Package registry owns the mapping of short codes to URL records.
// It validates input, allocates unique short codes and enforces expiry.
// All methods are safe for concurrent use.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shorturls/internal/entity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// DefaultCodeLength is the length of generated short codes.
	DefaultCodeLength = 6

	alphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	maxRetries = 64

	urlRule  = "required,http_url"
	codeRule = "alphanum,min=3,max=20"
)

// CodeGenerator produces candidate short codes.
type CodeGenerator func() (string, error)

// NanoID returns a CodeGenerator that draws codes of the given length from
// the mixed-case alphanumeric alphabet.
func NanoID(length int) CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}

	return func() (string, error) {
		return gonanoid.Generate(alphabet, length)
	}
}

// CreateParams holds the input of Registry.Create.
type CreateParams struct {
	OriginalURL     string
	ValidityMinutes int
	CustomCode      string // CustomCode is optional; a code is generated when empty.
}

// Registry is an in-memory store of URL records keyed by short code.
type Registry struct {
	mu       sync.RWMutex
	urls     map[string]entity.URL
	generate CodeGenerator
	validate *validator.Validate
}

// New creates an empty registry that uses generate for codes the caller does not supply.
func New(generate CodeGenerator) *Registry {
	if generate == nil {
		generate = NanoID(DefaultCodeLength)
	}

	return &Registry{
		urls:     make(map[string]entity.URL),
		generate: generate,
		validate: validator.New(),
	}
}

// ValidShortCode reports whether code matches ^[A-Za-z0-9]{3,20}$.
func (r *Registry) ValidShortCode(code string) bool {
	return r.validate.Var(code, codeRule) == nil
}

// Create validates params and stores a new URL record created at now.
//
// A custom code that is already stored fails with entity.ErrShortCodeExists,
// whether or not the stored record is still active. Generated codes are
// retried until a free one is found.
func (r *Registry) Create(params CreateParams, now time.Time) (*entity.URL, error) {
	const op = "registry.Registry.Create"

	if err := r.validate.Var(params.OriginalURL, urlRule); err != nil {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidURL)
	}

	if params.ValidityMinutes < entity.MinValidityMinutes || params.ValidityMinutes > entity.MaxValidityMinutes {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidValidity)
	}

	if params.CustomCode != "" && !r.ValidShortCode(params.CustomCode) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidShortCodeFormat)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	shortCode := params.CustomCode

	if shortCode != "" {
		if _, ok := r.urls[shortCode]; ok {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}
	} else {
		var err error

		shortCode, err = r.freeCode()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	url := entity.URL{
		ShortCode:   shortCode,
		OriginalURL: params.OriginalURL,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(params.ValidityMinutes) * time.Minute),
	}
	r.urls[shortCode] = url

	return &url, nil
}

// freeCode must be called with r.mu held for writing.
func (r *Registry) freeCode() (string, error) {
	for i := 0; i < maxRetries; i++ {
		code, err := r.generate()
		if err != nil {
			return "", fmt.Errorf("failed to generate short code: %w", err)
		}

		if !r.ValidShortCode(code) {
			continue
		}

		if _, ok := r.urls[code]; !ok {
			return code, nil
		}
	}

	return "", entity.ErrMaxRetriesExceeded
}

// Resolve returns the record for shortCode if it exists and is active at now.
// Unknown and expired codes both fail with entity.ErrURLNotFound.
func (r *Registry) Resolve(shortCode string, now time.Time) (*entity.URL, error) {
	const op = "registry.Registry.Resolve"

	r.mu.RLock()
	url, ok := r.urls[shortCode]
	r.mu.RUnlock()

	if !ok || !url.IsActiveAt(now) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return &url, nil
}

// Get returns the stored record for shortCode, including an expired one that
// has not been swept yet.
func (r *Registry) Get(shortCode string) (*entity.URL, error) {
	const op = "registry.Registry.Get"

	r.mu.RLock()
	url, ok := r.urls[shortCode]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return &url, nil
}

// Delete removes the record for shortCode and frees the code.
func (r *Registry) Delete(shortCode string) error {
	const op = "registry.Registry.Delete"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.urls[shortCode]; !ok {
		return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	delete(r.urls, shortCode)

	return nil
}

// SweepExpired removes every record that is no longer active at now and
// returns the removed short codes. The boundary is ExpiresAt <= now, so a
// record expiring exactly at now is removed.
func (r *Registry) SweepExpired(now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string

	for code, url := range r.urls {
		if !url.IsActiveAt(now) {
			delete(r.urls, code)
			removed = append(removed, code)
		}
	}

	return removed
}

// Len returns the number of stored records, expired ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.urls)
}
