package collagery

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	recordName   = "data"
	legacySuffix = ".json"
	listPageSize = 100
)

// Resolver translates slugs into authoritative collage records on top of a
// MediaStore, tolerating the CDN's duplicate-key and edge-cache behavior.
//
// The CDN may hold one logical record under both "<folder>/<slug>/data" and
// a legacy "<folder>/<slug>/data.json", each with independent versions.
// Reads pick the authoritative copy via ChooseObject and fetch it through a
// version-qualified URL; writes always target the canonical extensionless
// key with overwrite, so duplicate sets converge over time.
type Resolver struct {
	store  MediaStore
	folder string
	now    func() time.Time
}

// NewResolver creates a resolver rooted at the given CDN folder.
func NewResolver(store MediaStore, folder string) *Resolver {
	return &Resolver{store: store, folder: folder, now: time.Now}
}

// ChooseObject folds a set of duplicate stored-object descriptors into the
// single authoritative one: an extensionless key beats a ".json" key
// regardless of version, among keys with the same suffix status the strictly
// higher version wins, and the earlier candidate keeps ties. Returns false
// when the candidate set is empty.
func ChooseObject(candidates []ObjectInfo) (ObjectInfo, bool) {
	if len(candidates) == 0 {
		return ObjectInfo{}, false
	}
	chosen := candidates[0]
	for _, c := range candidates[1:] {
		if preferred(c, chosen) {
			chosen = c
		}
	}
	return chosen, true
}

func preferred(a, b ObjectInfo) bool {
	aLegacy := strings.HasSuffix(a.Key, legacySuffix)
	bLegacy := strings.HasSuffix(b.Key, legacySuffix)
	if aLegacy != bLegacy {
		return bLegacy
	}
	return a.Version > b.Version
}

func (r *Resolver) canonicalKey(slug string) string {
	return r.folder + "/" + slug + "/" + recordName
}

func (r *Resolver) slugPrefix(slug string) string {
	return r.folder + "/" + slug
}

// Get resolves a slug to its authoritative record.
func (r *Resolver) Get(ctx context.Context, slug string) (Collage, error) {
	if slug == "" {
		return Collage{}, fmt.Errorf("get collage: %w: slug cannot be empty", ErrInvalidInput)
	}

	candidates, err := r.candidates(ctx, slug)
	if err != nil {
		return Collage{}, fmt.Errorf("get collage %q: %w", slug, err)
	}

	chosen, ok := ChooseObject(candidates)
	if !ok {
		return Collage{}, fmt.Errorf("get collage %q: %w", slug, ErrNotFound)
	}

	return r.fetchRecord(ctx, slug, chosen)
}

// candidates lists the stored objects that could represent the slug's
// record, following the list cursor until exhausted.
func (r *Resolver) candidates(ctx context.Context, slug string) ([]ObjectInfo, error) {
	prefix := r.canonicalKey(slug)
	var out []ObjectInfo

	cursor := ""
	for {
		page, err := r.store.List(ctx, ResourceRaw, prefix, listPageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("list records: %w: %v", ErrUpstream, err)
		}
		for _, obj := range page.Objects {
			if obj.Key == prefix || obj.Key == prefix+legacySuffix {
				out = append(out, obj)
			}
		}
		if page.NextCursor == "" {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

// fetchRecord retrieves and parses one stored record. The version number is
// always embedded in the fetch so a stale cached revision can never win.
func (r *Resolver) fetchRecord(ctx context.Context, slug string, obj ObjectInfo) (Collage, error) {
	raw, err := r.store.FetchVersion(ctx, ResourceRaw, obj.Key, obj.Version)
	if err != nil {
		return Collage{}, fmt.Errorf("fetch record %q v%d: %w: %v", obj.Key, obj.Version, ErrUpstream, err)
	}

	var col Collage
	if err := json.Unmarshal(raw, &col); err != nil {
		return Collage{}, fmt.Errorf("parse record %q v%d: %w: %v", obj.Key, obj.Version, ErrUpstream, err)
	}
	if col.Slug == "" {
		col.Slug = slug
	}
	return col, nil
}

// Create validates and stores a new record under the canonical key.
func (r *Resolver) Create(ctx context.Context, in CreateCollage) (Collage, error) {
	if !IsValidSlug(in.Slug) {
		return Collage{}, fmt.Errorf("create collage: %w: invalid slug %q", ErrInvalidInput, in.Slug)
	}
	if len(in.Items) == 0 {
		return Collage{}, fmt.Errorf("create collage %q: %w: at least one item required", in.Slug, ErrInvalidInput)
	}

	visible := true
	if in.Visible != nil {
		visible = *in.Visible
	}
	preview := in.Preview
	if preview == "" {
		preview = in.Items[0].URL
	}

	col := Collage{
		Slug:      in.Slug,
		Title:     in.Title,
		Date:      in.Date,
		Desc:      in.Desc,
		Tags:      in.Tags,
		Items:     in.Items,
		CreatedAt: r.now().UTC().Format(time.RFC3339),
		Preview:   preview,
		Visible:   &visible,
	}

	if err := r.writeRecord(ctx, col); err != nil {
		return Collage{}, fmt.Errorf("create collage %q: %w", in.Slug, err)
	}
	return col, nil
}

// SetVisibility resolves the record, flips its visible flag and writes it
// back to the canonical key. Read-modify-write without a version guard:
// concurrent toggles on the same slug race and the last write wins.
func (r *Resolver) SetVisibility(ctx context.Context, slug string, visible bool) (Collage, error) {
	col, err := r.Get(ctx, slug)
	if err != nil {
		return Collage{}, err
	}

	col.Visible = &visible
	if err := r.writeRecord(ctx, col); err != nil {
		return Collage{}, fmt.Errorf("set visibility %q: %w", slug, err)
	}
	return col, nil
}

// writeRecord uploads the record JSON to the canonical extensionless key
// with overwrite, regardless of which key the record was read from.
func (r *Resolver) writeRecord(ctx context.Context, col Collage) error {
	raw, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	dataURI := "data:application/json;base64," + base64.StdEncoding.EncodeToString(raw)
	opts := UploadOptions{
		Kind:      ResourceRaw,
		Key:       r.canonicalKey(col.Slug),
		Overwrite: true,
		Format:    "json",
	}
	if err := r.store.Upload(ctx, dataURI, opts); err != nil {
		return fmt.Errorf("upload record %q: %w: %v", opts.Key, ErrUpstream, err)
	}
	return nil
}

// Delete removes every physical copy of the record, the collage's images and
// finally the folder container. Unknown slugs are not an error: the prefix
// deletes are idempotent.
func (r *Resolver) Delete(ctx context.Context, slug string) error {
	if slug == "" {
		return fmt.Errorf("delete collage: %w: slug cannot be empty", ErrInvalidInput)
	}

	prefix := r.slugPrefix(slug)
	for _, kind := range []ResourceKind{ResourceRaw, ResourceImage} {
		if err := r.store.DeleteByPrefix(ctx, kind, prefix); err != nil {
			return fmt.Errorf("delete collage %q: %w: %v", slug, ErrUpstream, err)
		}
	}
	if err := r.store.DeleteFolder(ctx, prefix); err != nil {
		return fmt.Errorf("delete collage folder %q: %w: %v", slug, ErrUpstream, err)
	}
	return nil
}

// List enumerates every record under the folder, resolves each slug's
// authoritative copy concurrently and returns the batch sorted reverse
// chronologically. Records that fail to fetch or parse are dropped rather
// than failing the batch; that best-effort aggregation is part of the
// contract, not an accident. Unless includeHidden is set, records stored
// with visible=false are excluded.
func (r *Resolver) List(ctx context.Context, includeHidden bool) ([]Collage, error) {
	groups := make(map[string][]ObjectInfo)

	cursor := ""
	for {
		page, err := r.store.List(ctx, ResourceRaw, r.folder+"/", listPageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("list collages: %w: %v", ErrUpstream, err)
		}
		for _, obj := range page.Objects {
			if slug, ok := r.slugFromKey(obj.Key); ok {
				groups[slug] = append(groups[slug], obj)
			}
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make([]Collage, 0, len(groups))
	)
	for slug, candidates := range groups {
		chosen, ok := ChooseObject(candidates)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(slug string, obj ObjectInfo) {
			defer wg.Done()
			col, err := r.fetchRecord(ctx, slug, obj)
			if err != nil {
				slog.Warn("dropping unresolvable collage from listing", "slug", slug, "err", err)
				return
			}
			mu.Lock()
			out = append(out, col)
			mu.Unlock()
		}(slug, chosen)
	}
	wg.Wait()

	if !includeHidden {
		filtered := make([]Collage, 0, len(out))
		for _, col := range out {
			if col.IsVisible() {
				filtered = append(filtered, col)
			}
		}
		out = filtered
	}

	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].SortTime(), out[j].SortTime()
		if ti.Equal(tj) {
			return out[i].Slug < out[j].Slug
		}
		return ti.After(tj)
	})
	return out, nil
}

// slugFromKey extracts the slug from a record key, rejecting keys that are
// not "<folder>/<slug>/data" or its ".json" twin.
func (r *Resolver) slugFromKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, r.folder+"/")
	if !ok {
		return "", false
	}
	slug, name, ok := strings.Cut(rest, "/")
	if !ok || slug == "" {
		return "", false
	}
	if name != recordName && name != recordName+legacySuffix {
		return "", false
	}
	return slug, true
}
