package e2e_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/collagery/collagery"
	collageryhttp "github.com/collagery/collagery/http"
)

const (
	testFolder   = "collages"
	testPassword = "e2e-password"
)

var (
	errNotStored = errors.New("no object at that key and version")
	errBadUpload = errors.New("upload payload is not a JSON data URI")
	errExists    = errors.New("object exists and overwrite not set")
)

// fakeObject is one stored object in the fake CDN.
type fakeObject struct {
	version int64
	data    []byte
}

// fakeCDN is an in-memory MediaStore: uploads persist and feed later lists
// and fetches, versions increase monotonically across all writes, and a
// version-qualified fetch fails on mismatch the way a real CDN's delivery
// URL 404s for a revision that never existed.
type fakeCDN struct {
	mu      sync.Mutex
	lastVer int64
	objects map[collagery.ResourceKind]map[string]fakeObject
}

func newFakeCDN() *fakeCDN {
	return &fakeCDN{
		objects: map[collagery.ResourceKind]map[string]fakeObject{
			collagery.ResourceRaw:   {},
			collagery.ResourceImage: {},
		},
	}
}

// seed stores raw bytes under a key directly, bypassing the upload path.
// Used to plant legacy records the way old tooling left them behind.
func (f *fakeCDN) seed(kind collagery.ResourceKind, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastVer++
	f.objects[kind][key] = fakeObject{version: f.lastVer, data: data}
}

func (f *fakeCDN) List(_ context.Context, kind collagery.ResourceKind, prefix string, _ int, _ string) (collagery.ObjectPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var page collagery.ObjectPage
	for key, obj := range f.objects[kind] {
		if strings.HasPrefix(key, prefix) {
			page.Objects = append(page.Objects, collagery.ObjectInfo{Key: key, Version: obj.version})
		}
	}
	sort.Slice(page.Objects, func(i, j int) bool {
		return page.Objects[i].Key < page.Objects[j].Key
	})
	return page, nil
}

func (f *fakeCDN) FetchVersion(_ context.Context, kind collagery.ResourceKind, key string, version int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	obj, ok := f.objects[kind][key]
	if !ok || obj.version != version {
		return nil, errNotStored
	}
	return obj.data, nil
}

func (f *fakeCDN) Fetch(_ context.Context, url string) ([]byte, error) {
	return []byte("image-bytes:" + url), nil
}

func (f *fakeCDN) Upload(_ context.Context, dataURI string, opts collagery.UploadOptions) error {
	const prefix = "data:application/json;base64,"
	encoded, ok := strings.CutPrefix(dataURI, prefix)
	if !ok {
		return errBadUpload
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.objects[opts.Kind][opts.Key]; exists && !opts.Overwrite {
		return errExists
	}
	f.lastVer++
	f.objects[opts.Kind][opts.Key] = fakeObject{version: f.lastVer, data: data}
	return nil
}

func (f *fakeCDN) DeleteByPrefix(_ context.Context, kind collagery.ResourceKind, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.objects[kind] {
		if strings.HasPrefix(key, prefix) {
			delete(f.objects[kind], key)
		}
	}
	return nil
}

func (f *fakeCDN) DeleteFolder(_ context.Context, _ string) error {
	return nil
}

// hasObject reports whether a key is currently stored.
func (f *fakeCDN) hasObject(kind collagery.ResourceKind, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[kind][key]
	return ok
}

// startServer wires the real resolver, token service and router over the
// fake CDN and serves them on a local listener.
func startServer(t *testing.T) (string, *fakeCDN, *http.Client) {
	t.Helper()

	cdn := newFakeCDN()
	resolver := collagery.NewResolver(cdn, testFolder)
	tokens := collagery.NewTokenService([]byte("e2e-secret"), time.Hour)
	handler := collageryhttp.NewHandler(&collageryhttp.HandlerConfig{
		AdminPassword: testPassword,
	}, resolver, tokens)

	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)

	return srv.URL, cdn, srv.Client()
}

// login exchanges the admin password for a bearer token.
func login(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()

	resp, err := client.Post(baseURL+"/login", "application/json",
		strings.NewReader(`{"password":"`+testPassword+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

// doJSON sends a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, client *http.Client, method, url, token, body string) *http.Response {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}
