package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvk/gitkit/internal/protocol/pktline"
)

func TestNewHTTPTransport(t *testing.T) {
	transport := NewHTTPTransport("https://github.com/user/repo")

	assert.NotNil(t, transport)
	assert.Equal(t, "https://github.com/user/repo", transport.baseURL)
	assert.Equal(t, "gitkit/1.0 (git-http-transport)", transport.userAgent)
	assert.NotNil(t, transport.client)
}

func TestParseGitURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "SSH format",
			input:    "git@github.com:user/repo.git",
			expected: "https://github.com/user/repo",
			wantErr:  false,
		},
		{
			name:     "HTTPS format",
			input:    "https://github.com/user/repo.git",
			expected: "https://github.com/user/repo",
			wantErr:  false,
		},
		{
			name:     "HTTP format (upgraded to HTTPS)",
			input:    "http://github.com/user/repo.git",
			expected: "https://github.com/user/repo",
			wantErr:  false,
		},
		{
			name:     "GitHub shorthand",
			input:    "user/repo",
			expected: "https://github.com/user/repo",
			wantErr:  false,
		},
		{
			name:     "Invalid SSH format",
			input:    "git@github.com",
			expected: "",
			wantErr:  true,
		},
		{
			name:     "Unsupported format",
			input:    "ftp://example.com/repo",
			expected: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseGitURL(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// buildRefAdvertisement constructs a realistic pkt-line-framed smart-HTTP
// ref advertisement response body.
func buildRefAdvertisement(service string, refs [][2]string, caps []string) []byte {
	var buf bytes.Buffer
	buf.Write(pktline.EncodeString("# service=" + service + "\n"))
	buf.Write(pktline.FlushPkt)

	for i, ref := range refs {
		line := ref[0] + " " + ref[1]
		if i == 0 && len(caps) > 0 {
			line += "\x00" + joinCaps(caps)
		}
		buf.Write(pktline.EncodeString(line + "\n"))
	}
	buf.Write(pktline.FlushPkt)
	return buf.Bytes()
}

func joinCaps(caps []string) string {
	out := ""
	for i, c := range caps {
		if i > 0 {
			out += " "
		}
		out += c
	}
	return out
}

func TestHTTPTransport_DiscoverRefs(t *testing.T) {
	body := buildRefAdvertisement("git-upload-pack", [][2]string{
		{"95dc4b2c3e0ef0a5b7b2e4b3e1f2e3e4e5e6e7e8e9abcdef", "HEAD"},
		{"95dc4b2c3e0ef0a5b7b2e4b3e1f2e3e4e5e6e7e8e9abcdef", "refs/heads/main"},
	}, []string{"multi_ack", "side-band-64k"})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/info/refs", r.URL.Path)
		assert.Equal(t, "git-upload-pack", r.URL.Query().Get("service"))

		w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL)
	ctx := context.Background()

	discovery, err := transport.DiscoverRefs(ctx, "git-upload-pack")
	require.NoError(t, err)

	assert.Equal(t, "git-upload-pack", discovery.Service)
	assert.Contains(t, discovery.Refs, "refs/heads/main")
	assert.Equal(t, "95dc4b2c3e0ef0a5b7b2e4b3e1f2e3e4e5e6e7e8e9abcdef", discovery.Refs["refs/heads/main"])
	assert.Contains(t, discovery.Capabilities, "multi_ack")
}

func TestHTTPTransport_DiscoverRefs_Error(t *testing.T) {
	tests := []struct {
		name        string
		statusCode  int
		contentType string
		body        string
		wantErr     string
	}{
		{
			name:        "404 not found",
			statusCode:  http.StatusNotFound,
			contentType: "text/plain",
			body:        "Not found",
			wantErr:     "unexpected status code: 404",
		},
		{
			name:        "wrong content type",
			statusCode:  http.StatusOK,
			contentType: "text/plain",
			body:        "wrong content",
			wantErr:     "unexpected content type: text/plain",
		},
		{
			name:        "invalid service advertisement",
			statusCode:  http.StatusOK,
			contentType: "application/x-git-upload-pack-advertisement",
			body:        "0010invalid data",
			wantErr:     "invalid service advertisement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			transport := NewHTTPTransport(server.URL)
			ctx := context.Background()

			_, err := transport.DiscoverRefs(ctx, "git-upload-pack")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPTransport_FetchPack(t *testing.T) {
	mockPackData := "PACK\x00\x00\x00\x02\x00\x00\x00\x00"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/git-upload-pack", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/x-git-upload-pack-request", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		pr := pktline.NewReader(bytes.NewReader(body))
		lines, err := pr.ReadAllUntilFlush()
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "want abc123\n", string(lines[0]))

		doneLine, ok, err := pr.ReadLine()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "done\n", string(doneLine))

		w.Header().Set("Content-Type", "application/x-git-upload-pack-result")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(mockPackData))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL)
	ctx := context.Background()

	wants := []string{"abc123"}
	haves := []string{}

	packReader, err := transport.FetchPack(ctx, wants, haves)
	require.NoError(t, err)
	defer packReader.Close()

	packData, err := io.ReadAll(packReader)
	require.NoError(t, err)
	assert.Equal(t, mockPackData, string(packData))
}

func TestHTTPTransport_FetchPack_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorized"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL)
	ctx := context.Background()

	_, err := transport.FetchPack(ctx, []string{"abc123"}, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 401")
}

func TestParseRefAdvertisement(t *testing.T) {
	body := buildRefAdvertisement("git-upload-pack", [][2]string{
		{"95dc4b2c3e0ef0a5b7b2e4b3e1f2e3e4e5e6e7e8e9abcde", "refs/heads/main"},
		{"1234567890123456789012345678901234567890", "refs/heads/develop"},
	}, nil)

	discovery, err := parseRefAdvertisement(bytes.NewReader(body), "git-upload-pack")
	require.NoError(t, err)
	assert.Equal(t, "git-upload-pack", discovery.Service)
	assert.Equal(t, "95dc4b2c3e0ef0a5b7b2e4b3e1f2e3e4e5e6e7e8e9abcde", discovery.Refs["refs/heads/main"])
	assert.Equal(t, "1234567890123456789012345678901234567890", discovery.Refs["refs/heads/develop"])
	assert.Equal(t, []string{"refs/heads/main", "refs/heads/develop"}, discovery.Order)
}

func TestParseRefAdvertisement_Empty(t *testing.T) {
	_, err := parseRefAdvertisement(bytes.NewReader(nil), "git-upload-pack")
	require.Error(t, err)
}

func TestParseRefAdvertisement_InvalidServiceLine(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(pktline.EncodeString("not a service line\n"))
	buf.Write(pktline.FlushPkt)

	_, err := parseRefAdvertisement(&buf, "git-upload-pack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid service advertisement")
}

func TestHTTPTransport_SetCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "username", user)
		assert.Equal(t, "password", pass)

		w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")
		w.WriteHeader(http.StatusOK)
		w.Write(buildRefAdvertisement("git-upload-pack", nil, nil))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL)
	transport.SetCredentials("username", "password")

	_, err := transport.DiscoverRefs(context.Background(), "git-upload-pack")
	require.NoError(t, err)
}

func TestHTTPTransport_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := transport.DiscoverRefs(ctx, "git-upload-pack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

func TestHTTPTransport_UserAgent(t *testing.T) {
	expectedUserAgent := "gitkit/1.0 (git-http-transport)"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, expectedUserAgent, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")
		w.WriteHeader(http.StatusOK)
		w.Write(buildRefAdvertisement("git-upload-pack", nil, nil))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL)
	ctx := context.Background()

	_, err := transport.DiscoverRefs(ctx, "git-upload-pack")
	require.NoError(t, err)
}

func TestStripNAK(t *testing.T) {
	var withNAK bytes.Buffer
	withNAK.Write(pktline.EncodeString("NAK\n"))
	withNAK.WriteString("PACKDATA")

	r, err := StripNAK(&withNAK)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "PACKDATA", string(data))

	noNAK := bytes.NewBufferString("PACKDATA")
	r2, err := StripNAK(noNAK)
	require.NoError(t, err)
	data2, err := io.ReadAll(r2)
	require.NoError(t, err)
	assert.Equal(t, "PACKDATA", string(data2))
}
