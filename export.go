package collagery

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode"
)

const (
	maxBaseNameRunes = 80
	maxCaptionRunes  = 40
)

// Archive is a rendered zip export of one collage. Name is the base filename
// without the ".zip" extension.
type Archive struct {
	Name string
	Data []byte
}

// ExportArchive renders a collage as a downloadable zip: a README.txt
// summary followed by one entry per item. Items whose binary fetch fails are
// skipped without reusing their index; a skipped item never aborts the
// export.
func (r *Resolver) ExportArchive(ctx context.Context, slug string) (Archive, error) {
	col, err := r.Get(ctx, slug)
	if err != nil {
		return Archive{}, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	readme, err := zw.Create("README.txt")
	if err != nil {
		return Archive{}, fmt.Errorf("export %q: %w", slug, err)
	}
	fmt.Fprintf(readme, "Title: %s\nDate: %s\nSlug: %s\nItems: %d\n",
		col.Title, col.Date, col.Slug, len(col.Items))

	for i, item := range col.Items {
		data, err := r.store.Fetch(ctx, item.URL)
		if err != nil {
			slog.Warn("skipping item in export", "slug", slug, "url", item.URL, "err", err)
			continue
		}
		w, err := zw.Create(itemFileName(i, item))
		if err != nil {
			return Archive{}, fmt.Errorf("export %q: %w", slug, err)
		}
		if _, err := w.Write(data); err != nil {
			return Archive{}, fmt.Errorf("export %q: %w", slug, err)
		}
	}

	if err := zw.Close(); err != nil {
		return Archive{}, fmt.Errorf("export %q: %w", slug, err)
	}
	return Archive{Name: ExportBaseName(col), Data: buf.Bytes()}, nil
}

// ExportBaseName builds the archive filename stem: sanitized title, the date
// as YYYYMMDD and the slug, joined by "-" with empty components dropped.
// When everything else drops out the slug alone remains.
func ExportBaseName(col Collage) string {
	var parts []string
	for _, raw := range []string{col.Title, dateStamp(col.Date), col.Slug} {
		if s := SanitizeName(raw); s != "" {
			parts = append(parts, s)
		}
	}
	name := truncateRunes(strings.Join(parts, "-"), maxBaseNameRunes)
	if name == "" {
		name = truncateRunes(SanitizeName(col.Slug), maxBaseNameRunes)
	}
	return name
}

// dateStamp compacts a "2006-01-02" date to "20060102"; anything else
// becomes the empty string and drops out of the filename.
func dateStamp(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.Format("20060102")
}

// SanitizeName makes a string safe for use as a filename component:
// characters outside letters, digits, space, underscore and hyphen are
// stripped, whitespace is collapsed and trimmed, and remaining spaces become
// underscores. Unicode letters survive, so diacritics are preserved.
func SanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	collapsed := strings.Join(strings.Fields(b.String()), " ")
	return strings.ReplaceAll(collapsed, " ", "_")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// itemFileName names an archive entry: two-digit 1-based index, optional
// sanitized caption, extension detected from the source URL.
func itemFileName(idx int, item CollageItem) string {
	name := fmt.Sprintf("%02d", idx+1)
	if caption := truncateRunes(SanitizeName(item.Caption), maxCaptionRunes); caption != "" {
		name += "_" + caption
	}
	return name + "." + itemExt(item.URL)
}

// itemExt detects the image extension from the URL path's trailing
// .jpg/.jpeg/.png/.webp, defaulting to jpg.
func itemExt(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.ToLower(p)
	for _, ext := range []string{"jpg", "jpeg", "png", "webp"} {
		if strings.HasSuffix(p, "."+ext) {
			return ext
		}
	}
	return "jpg"
}
