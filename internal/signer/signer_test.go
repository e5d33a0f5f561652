package signer

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner() *Signer {
	return New([]byte("0123456789abcdef0123456789abcdef"), "http://localhost:8080")
}

// parseQuery extracts the query of a signed URL.
func parseQuery(t *testing.T, rawURL string) (path string, q url.Values) {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Path, u.Query()
}

func TestSigner_UploadRoundTrip(t *testing.T) {
	s := newTestSigner()

	signed := s.UploadURL("public/pack.zip", "application/zip", time.Hour)
	path, q := parseQuery(t, signed)

	assert.Equal(t, "/files/public/pack.zip", path)
	assert.Equal(t, "application/zip", q.Get(ParamContentType))

	err := s.Verify(http.MethodPut, "public/pack.zip", q, time.Now())
	assert.NoError(t, err)
}

func TestSigner_DownloadRoundTrip(t *testing.T) {
	s := newTestSigner()

	signed := s.DownloadURL("public/pack.zip", 5*time.Minute, "Icon_Pack.zip")
	_, q := parseQuery(t, signed)

	assert.Equal(t, "Icon_Pack.zip", q.Get(ParamFilename))

	err := s.Verify(http.MethodGet, "public/pack.zip", q, time.Now())
	assert.NoError(t, err)
}

func TestSigner_Verify(t *testing.T) {
	s := newTestSigner()

	signed := s.DownloadURL("public/pack.zip", 5*time.Minute, "pack.zip")
	_, valid := parseQuery(t, signed)

	tests := []struct {
		name    string
		method  string
		key     string
		mutate  func(url.Values)
		now     time.Time
		wantErr error
	}{
		{
			name:   "valid",
			method: http.MethodGet,
			key:    "public/pack.zip",
			mutate: func(q url.Values) {},
			now:    time.Now(),
		},
		{
			name:    "expired",
			method:  http.MethodGet,
			key:     "public/pack.zip",
			mutate:  func(q url.Values) {},
			now:     time.Now().Add(6 * time.Minute),
			wantErr: ErrExpired,
		},
		{
			name:    "wrong method",
			method:  http.MethodPut,
			key:     "public/pack.zip",
			mutate:  func(q url.Values) {},
			now:     time.Now(),
			wantErr: ErrBadSignature,
		},
		{
			name:    "different key",
			method:  http.MethodGet,
			key:     "public/other.zip",
			mutate:  func(q url.Values) {},
			now:     time.Now(),
			wantErr: ErrBadSignature,
		},
		{
			name:   "tampered filename",
			method: http.MethodGet,
			key:    "public/pack.zip",
			mutate: func(q url.Values) {
				q.Set(ParamFilename, "evil.exe")
			},
			now:     time.Now(),
			wantErr: ErrBadSignature,
		},
		{
			name:   "tampered expiry",
			method: http.MethodGet,
			key:    "public/pack.zip",
			mutate: func(q url.Values) {
				q.Set(ParamExpires, "9999999999")
			},
			now:     time.Now(),
			wantErr: ErrBadSignature,
		},
		{
			name:   "missing signature",
			method: http.MethodGet,
			key:    "public/pack.zip",
			mutate: func(q url.Values) {
				q.Del(ParamSignature)
			},
			now:     time.Now(),
			wantErr: ErrMalformed,
		},
		{
			name:   "garbage expiry",
			method: http.MethodGet,
			key:    "public/pack.zip",
			mutate: func(q url.Values) {
				q.Set(ParamExpires, "not-a-number")
			},
			now:     time.Now(),
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := cloneValues(valid)
			tt.mutate(q)

			err := s.Verify(tt.method, tt.key, q, tt.now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSigner_DifferentKeysDisagree(t *testing.T) {
	a := New([]byte("key-a-key-a-key-a-key-a-key-a-ka"), "http://localhost:8080")
	b := New([]byte("key-b-key-b-key-b-key-b-key-b-kb"), "http://localhost:8080")

	signed := a.DownloadURL("public/pack.zip", time.Minute, "")
	_, q := parseQuery(t, signed)

	assert.NoError(t, a.Verify(http.MethodGet, "public/pack.zip", q, time.Now()))
	assert.ErrorIs(t, b.Verify(http.MethodGet, "public/pack.zip", q, time.Now()), ErrBadSignature)
}

func TestSigner_EscapesKeySegments(t *testing.T) {
	s := newTestSigner()

	signed := s.UploadURL("public/my file.zip", "application/zip", time.Minute)
	path, _ := parseQuery(t, signed)

	// url.Parse decodes the escaped segment back.
	assert.Equal(t, "/files/public/my file.zip", path)
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
