package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arvk/gitkit/internal/protocol/pktline"
)

// HTTPTransport implements Git's smart-HTTP transport: ref discovery
// over GET info/refs and pack negotiation over POST git-upload-pack,
// both framed with pkt-line.
type HTTPTransport struct {
	client    *http.Client
	baseURL   string
	userAgent string
	username  string
	password  string
}

// NewHTTPTransport creates a new HTTP transport for Git protocol
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   baseURL,
		userAgent: "gitkit/1.0 (git-http-transport)",
	}
}

// SetCredentials configures HTTP basic-auth credentials for requests
// against the remote (used by private HTTP(S) remotes).
func (t *HTTPTransport) SetCredentials(username, password string) {
	t.username = username
	t.password = password
}

func (t *HTTPTransport) authenticate(req *http.Request) {
	if t.username != "" || t.password != "" {
		req.SetBasicAuth(t.username, t.password)
	}
}

// RefDiscovery represents the result of ref discovery
type RefDiscovery struct {
	Refs         map[string]string // ref name -> object ID
	Order        []string          // ref names in wire advertisement order
	Capabilities []string          // server capabilities
	Service      string            // service name
}

// DiscoverRefs implements the initial ref discovery phase of Git's
// smart-HTTP protocol: GET /info/refs?service=<service>, expecting a
// pkt-line-framed response.
func (t *HTTPTransport) DiscoverRefs(ctx context.Context, service string) (*RefDiscovery, error) {
	reqURL := fmt.Sprintf("%s/info/refs?service=%s", t.baseURL, service)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "*/*")
	t.authenticate(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	expectedContentType := fmt.Sprintf("application/x-%s-advertisement", service)
	if contentType != expectedContentType {
		return nil, fmt.Errorf("unexpected content type: %s", contentType)
	}

	return parseRefAdvertisement(resp.Body, service)
}

// parseRefAdvertisement decodes the smart-HTTP ref advertisement
// format: a pkt-line "# service=<name>\n" line, a flush packet, then
// one pkt-line per ref ("<id> <name>\x00<capabilities>" for the
// first, "<id> <name>" after), terminated by another flush packet.
func parseRefAdvertisement(r io.Reader, service string) (*RefDiscovery, error) {
	pr := pktline.NewReader(r)
	discovery := &RefDiscovery{Refs: make(map[string]string)}

	first, ok, err := pr.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("failed to read service announcement: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("invalid service advertisement: empty response")
	}

	line := strings.TrimRight(string(first), "\n")
	if !strings.HasPrefix(line, "# service=") {
		return nil, fmt.Errorf("invalid service advertisement: %q", line)
	}
	discovery.Service = strings.TrimPrefix(line, "# service=")

	// The announcement line is followed by a flush packet before the
	// ref list begins.
	if _, ok, err := pr.ReadLine(); err == nil && ok {
		return nil, fmt.Errorf("invalid service advertisement: expected flush after %q", line)
	} else if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read advertisement flush: %w", err)
	}

	refLines, err := pr.ReadAllUntilFlush()
	if err != nil {
		return nil, fmt.Errorf("failed to read ref advertisement: %w", err)
	}

	for i, raw := range refLines {
		text := strings.TrimRight(string(raw), "\n")
		if i == 0 {
			if idx := strings.IndexByte(text, 0); idx >= 0 {
				discovery.Capabilities = strings.Fields(text[idx+1:])
				text = text[:idx]
			}
		}

		parts := strings.SplitN(text, " ", 2)
		if len(parts) != 2 {
			continue
		}
		if _, seen := discovery.Refs[parts[1]]; !seen {
			discovery.Order = append(discovery.Order, parts[1])
		}
		discovery.Refs[parts[1]] = parts[0]
	}

	return discovery, nil
}

// FetchPack performs the want/have/done negotiation and returns the
// response body, which begins with an optional NAK line followed by
// raw packfile bytes.
func (t *HTTPTransport) FetchPack(ctx context.Context, wants, haves []string) (io.ReadCloser, error) {
	reqURL := fmt.Sprintf("%s/git-upload-pack", t.baseURL)

	var buf bytes.Buffer
	for _, want := range wants {
		buf.Write(pktline.EncodeString(fmt.Sprintf("want %s\n", want)))
	}
	for _, have := range haves {
		buf.Write(pktline.EncodeString(fmt.Sprintf("have %s\n", have)))
	}
	buf.Write(pktline.FlushPkt)
	buf.Write(pktline.EncodeString("done\n"))

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Content-Type", "application/x-git-upload-pack-request")
	req.Header.Set("Accept", "application/x-git-upload-pack-result")
	t.authenticate(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/x-git-upload-pack-result" {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected content type: %s", contentType)
	}

	return resp.Body, nil
}

// StripNAK reads and discards a leading pkt-line-framed "NAK\n" (sent
// by servers that do not support multi-ack) from a git-upload-pack
// response, returning a reader positioned at the start of the raw
// packfile bytes. If the stream starts directly with "PACK", it is
// returned unchanged.
func StripNAK(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	peeked, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to peek pack response: %w", err)
	}
	if string(peeked) == "PACK" {
		return br, nil
	}

	pr := pktline.NewReader(br)
	if _, _, err := pr.ReadLine(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read NAK line: %w", err)
	}
	return br, nil
}

// ParseGitURL parses a Git URL and returns the HTTP equivalent
func ParseGitURL(gitURL string) (string, error) {
	// SSH format: git@github.com:user/repo.git
	if strings.HasPrefix(gitURL, "git@") {
		parts := strings.SplitN(gitURL, ":", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("invalid SSH URL format: %s", gitURL)
		}

		host := strings.TrimPrefix(parts[0], "git@")
		path := strings.TrimSuffix(parts[1], ".git")

		return fmt.Sprintf("https://%s/%s", host, path), nil
	}

	// HTTP/HTTPS format
	if strings.HasPrefix(gitURL, "http://") || strings.HasPrefix(gitURL, "https://") {
		u, err := url.Parse(gitURL)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}

		// Keep HTTP for localhost/127.0.0.1 (test servers), otherwise upgrade to HTTPS
		if u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" && !strings.HasPrefix(u.Hostname(), "127.") {
			u.Scheme = "https"
		}
		u.Path = strings.TrimSuffix(u.Path, ".git")

		return u.String(), nil
	}

	// GitHub shorthand: user/repo
	if strings.Count(gitURL, "/") == 1 && !strings.Contains(gitURL, ":") {
		return fmt.Sprintf("https://github.com/%s", gitURL), nil
	}

	return "", fmt.Errorf("unsupported URL format: %s", gitURL)
}
