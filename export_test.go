package collagery_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/collagery/collagery"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Summer", "Summer"},
		{"spaces become underscores", "My Trip", "My_Trip"},
		{"punctuation stripped, diacritics kept", "Café  Night!!", "Café_Night"},
		{"hyphen and underscore survive", "a-b_c", "a-b_c"},
		{"tabs and newlines collapse", "a\t\n b", "a_b"},
		{"only punctuation", "!!!", ""},
		{"empty", "", ""},
		{"leading and trailing space trimmed", "  trip  ", "trip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collagery.SanitizeName(tt.in))
		})
	}
}

func TestExportBaseName(t *testing.T) {
	tests := []struct {
		name string
		col  collagery.Collage
		want string
	}{
		{
			name: "title date slug",
			col:  collagery.Collage{Slug: "summer-trip", Title: "Summer Trip", Date: "2024-07-15"},
			want: "Summer_Trip-20240715-summer-trip",
		},
		{
			name: "unparseable date drops out",
			col:  collagery.Collage{Slug: "trip", Title: "Trip", Date: "sometime"},
			want: "Trip-trip",
		},
		{
			name: "empty title drops out",
			col:  collagery.Collage{Slug: "trip", Date: "2024-07-15"},
			want: "20240715-trip",
		},
		{
			name: "punctuation-only title drops out",
			col:  collagery.Collage{Slug: "trip", Title: "???"},
			want: "trip",
		},
		{
			name: "slug alone",
			col:  collagery.Collage{Slug: "trip"},
			want: "trip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collagery.ExportBaseName(tt.col))
		})
	}
}

func TestExportBaseName_Truncation(t *testing.T) {
	col := collagery.Collage{
		Slug:  "trip",
		Title: strings.Repeat("a", 200),
	}
	name := collagery.ExportBaseName(col)
	assert.Equal(t, 80, len([]rune(name)))
}

func TestResolver_ExportArchive(t *testing.T) {
	ctx := context.Background()

	record := collagery.Collage{
		Slug:  "trip",
		Title: "Trip",
		Date:  "2024-07-15",
		Items: []collagery.CollageItem{
			{URL: "https://cdn.example/one.jpg", Caption: "First shot"},
			{URL: "https://cdn.example/two.png"},
			{URL: "https://cdn.example/three.webp", Caption: "Last"},
		},
	}

	setup := func(t *testing.T) (*collagery.Resolver, *SpyMediaStore) {
		resolver, store := newResolver(t)
		store.On("List", ctx, collagery.ResourceRaw, "collages/trip/data", 100, "").
			Return(collagery.ObjectPage{Objects: []collagery.ObjectInfo{
				{Key: "collages/trip/data", Version: 1},
			}}, nil)
		store.On("FetchVersion", ctx, collagery.ResourceRaw, "collages/trip/data", int64(1)).
			Return(recordJSON(t, record), nil)
		return resolver, store
	}

	readEntries := func(t *testing.T, data []byte) map[string]string {
		t.Helper()
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		assert.NoError(t, err)
		entries := make(map[string]string, len(zr.File))
		for _, f := range zr.File {
			rc, err := f.Open()
			assert.NoError(t, err)
			content, err := io.ReadAll(rc)
			assert.NoError(t, err)
			assert.NoError(t, rc.Close())
			entries[f.Name] = string(content)
		}
		return entries
	}

	t.Run("full archive", func(t *testing.T) {
		resolver, store := setup(t)
		store.On("Fetch", ctx, "https://cdn.example/one.jpg").Return([]byte("img1"), nil)
		store.On("Fetch", ctx, "https://cdn.example/two.png").Return([]byte("img2"), nil)
		store.On("Fetch", ctx, "https://cdn.example/three.webp").Return([]byte("img3"), nil)

		archive, err := resolver.ExportArchive(ctx, "trip")
		assert.NoError(t, err)
		assert.Equal(t, "Trip-20240715-trip", archive.Name)

		entries := readEntries(t, archive.Data)
		assert.Len(t, entries, 4)
		assert.Equal(t, "Title: Trip\nDate: 2024-07-15\nSlug: trip\nItems: 3\n", entries["README.txt"])
		assert.Equal(t, "img1", entries["01_First_shot.jpg"])
		assert.Equal(t, "img2", entries["02.png"])
		assert.Equal(t, "img3", entries["03_Last.webp"])
	})

	t.Run("failed item is skipped without index reuse", func(t *testing.T) {
		resolver, store := setup(t)
		store.On("Fetch", ctx, "https://cdn.example/one.jpg").Return([]byte("img1"), nil)
		store.On("Fetch", ctx, "https://cdn.example/two.png").Return(nil, errors.New("boom"))
		store.On("Fetch", ctx, "https://cdn.example/three.webp").Return([]byte("img3"), nil)

		archive, err := resolver.ExportArchive(ctx, "trip")
		assert.NoError(t, err)

		entries := readEntries(t, archive.Data)
		assert.Len(t, entries, 3)
		assert.Contains(t, entries, "01_First_shot.jpg")
		assert.NotContains(t, entries, "02.png")
		assert.Contains(t, entries, "03_Last.webp")
	})

	t.Run("readme comes first", func(t *testing.T) {
		resolver, store := setup(t)
		store.On("Fetch", ctx, mock.Anything).Return([]byte("img"), nil)

		archive, err := resolver.ExportArchive(ctx, "trip")
		assert.NoError(t, err)

		zr, err := zip.NewReader(bytes.NewReader(archive.Data), int64(len(archive.Data)))
		assert.NoError(t, err)
		assert.NotEmpty(t, zr.File)
		assert.Equal(t, "README.txt", zr.File[0].Name)
	})

	t.Run("unknown slug is not found", func(t *testing.T) {
		resolver, store := newResolver(t)
		store.On("List", ctx, collagery.ResourceRaw, "collages/ghost/data", 100, "").
			Return(collagery.ObjectPage{}, nil)

		_, err := resolver.ExportArchive(ctx, "ghost")
		assert.ErrorIs(t, err, collagery.ErrNotFound)
	})
}

func TestItemExtensionDetection(t *testing.T) {
	ctx := context.Background()

	record := collagery.Collage{
		Slug: "trip",
		Items: []collagery.CollageItem{
			{URL: "https://cdn.example/a.JPEG"},
			{URL: "https://cdn.example/b.png?width=800"},
			{URL: "https://cdn.example/c"},
		},
	}

	resolver, store := newResolver(t)
	store.On("List", ctx, collagery.ResourceRaw, "collages/trip/data", 100, "").
		Return(collagery.ObjectPage{Objects: []collagery.ObjectInfo{
			{Key: "collages/trip/data", Version: 1},
		}}, nil)
	store.On("FetchVersion", ctx, collagery.ResourceRaw, "collages/trip/data", int64(1)).
		Return(recordJSON(t, record), nil)
	store.On("Fetch", ctx, mock.Anything).Return([]byte("img"), nil)

	archive, err := resolver.ExportArchive(ctx, "trip")
	assert.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(archive.Data), int64(len(archive.Data)))
	assert.NoError(t, err)

	var names []string
	for _, f := range zr.File[1:] {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"01.jpeg", "02.png", "03.jpg"}, names)
}

func TestItemCaptionTruncation(t *testing.T) {
	ctx := context.Background()

	record := collagery.Collage{
		Slug: "trip",
		Items: []collagery.CollageItem{
			{URL: "https://cdn.example/a.jpg", Caption: strings.Repeat("x", 60)},
		},
	}

	resolver, store := newResolver(t)
	store.On("List", ctx, collagery.ResourceRaw, "collages/trip/data", 100, "").
		Return(collagery.ObjectPage{Objects: []collagery.ObjectInfo{
			{Key: "collages/trip/data", Version: 1},
		}}, nil)
	store.On("FetchVersion", ctx, collagery.ResourceRaw, "collages/trip/data", int64(1)).
		Return(recordJSON(t, record), nil)
	store.On("Fetch", ctx, mock.Anything).Return([]byte("img"), nil)

	archive, err := resolver.ExportArchive(ctx, "trip")
	assert.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(archive.Data), int64(len(archive.Data)))
	assert.NoError(t, err)
	assert.Len(t, zr.File, 2)
	assert.Equal(t, "01_"+strings.Repeat("x", 40)+".jpg", zr.File[1].Name)
}
