package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	assert.Equal(t, "1700000000123-calculus.pdf", assetKey(at, "calculus.pdf"))
	assert.Equal(t, "1700000000123-week_1_notes.pdf", assetKey(at, "week 1 notes.pdf"))
	assert.Equal(t, "1700000000123-evil.pdf", assetKey(at, "../../etc/evil.pdf"))
	assert.Equal(t, "1700000000123-evil.pdf", assetKey(at, `C:\tmp\evil.pdf`))
	assert.Equal(t, "1700000000123-note.pdf", assetKey(at, "..."))
}

func newTestListingService(t *testing.T) (ListingService, *testRepos, *fakeStorage) {
	repos := newTestRepos(t)
	storage := newFakeStorage()
	svc := NewListingService(repos.listings, storage, testLogger)
	svc.(*listingServiceImpl).now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, repos, storage
}

func TestListingService_UploadAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, storage := newTestListingService(t)

	listing, err := svc.Upload(ctx, &UploadListingInput{
		Title:       "  Thermodynamics  ",
		Price:       decimal.RequireFromString("249.00"),
		FileName:    "thermo.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader("%PDF-1.7"),
		Size:        8,
	})
	require.NoError(t, err)
	assert.Equal(t, "Thermodynamics", listing.Title)
	assert.Equal(t, "1700000000000-thermo.pdf", listing.AssetKey)
	assert.True(t, storage.has(listing.AssetKey))
	assert.Equal(t, "https://cdn.example.test/1700000000000-thermo.pdf", svc.AssetURL(listing))

	got, err := svc.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.Title, got.Title)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.Delete(ctx, listing.ID))
	assert.False(t, storage.has(listing.AssetKey))

	_, err = svc.Get(ctx, listing.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, listing.ID), ErrNotFound)
}

func TestListingService_UploadValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, storage := newTestListingService(t)

	tests := []struct {
		name string
		in   *UploadListingInput
	}{
		{name: "nil input"},
		{name: "missing title", in: &UploadListingInput{Price: decimal.NewFromInt(1), FileName: "a.pdf", Body: strings.NewReader("x")}},
		{name: "missing file", in: &UploadListingInput{Title: "A", Price: decimal.NewFromInt(1)}},
		{name: "zero price", in: &UploadListingInput{Title: "A", FileName: "a.pdf", Body: strings.NewReader("x")}},
		{name: "not a pdf", in: &UploadListingInput{Title: "A", Price: decimal.NewFromInt(1), FileName: "a.docx", ContentType: "application/msword", Body: strings.NewReader("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tt.in)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
	assert.Empty(t, storage.objects)
}

func TestListingService_UploadStorageFailure(t *testing.T) {
	svc, _, storage := newTestListingService(t)
	storage.putErr = errors.New("bucket not found")

	_, err := svc.Upload(context.Background(), &UploadListingInput{
		Title:    "Optics",
		Price:    decimal.NewFromInt(99),
		FileName: "optics.pdf",
		Body:     strings.NewReader("%PDF"),
	})
	assert.ErrorIs(t, err, ErrPersistenceFailed)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
