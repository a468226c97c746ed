package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

const maxEvidenceRedirects = 5

var blockedHostnames = []string{"localhost", "metadata.google.internal"}

// addrPolicy decides whether evidence may be downloaded from an address. It
// is replaced in tests so httptest servers on loopback are reachable.
var addrPolicy = publicAddr

// publicAddr rejects every address that is not publicly routable: loopback,
// private, link-local (which covers 169.254.169.254) and unspecified ranges.
func publicAddr(addr netip.Addr) error {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid():
		return errors.New("blocked address: invalid")
	case addr.IsLoopback():
		return fmt.Errorf("blocked address: loopback %s", addr)
	case addr.IsPrivate():
		return fmt.Errorf("blocked address: private %s", addr)
	case addr.IsLinkLocalUnicast(), addr.IsLinkLocalMulticast(), addr.IsInterfaceLocalMulticast():
		return fmt.Errorf("blocked address: link-local %s", addr)
	case addr.IsUnspecified():
		return fmt.Errorf("blocked address: unspecified %s", addr)
	case addr.IsMulticast():
		return fmt.Errorf("blocked address: multicast %s", addr)
	}
	return nil
}

// vetHost checks host and, for names, every address it resolves to.
func vetHost(ctx context.Context, host string) error {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for _, name := range blockedHostnames {
		if host == name || strings.HasSuffix(host, "."+name) {
			return fmt.Errorf("blocked host: %s", host)
		}
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addrPolicy(addr)
	}
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", host, err)
	}
	for _, addr := range addrs {
		if err := addrPolicy(addr); err != nil {
			return fmt.Errorf("host %s: %w", host, err)
		}
	}
	return nil
}

// guardDial runs for every connection the evidence client opens, so a name
// that resolves differently after vetHost still cannot reach a blocked address.
func guardDial(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("blocked address: %s", host)
	}
	return addrPolicy(addr.WithZone(""))
}

func newEvidenceClient() *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: guardDial}
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 20 * time.Second,
			MaxIdleConns:          4,
			IdleConnTimeout:       30 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxEvidenceRedirects {
				return fmt.Errorf("too many redirects (max %d)", maxEvidenceRedirects)
			}
			return vetHost(req.Context(), req.URL.Hostname())
		},
	}
}

var evidenceClient = newEvidenceClient()

// download fetches an http(s) URL after vetting its host.
func download(ctx context.Context, source string) (evidence, error) {
	u, err := url.Parse(source)
	if err != nil {
		return evidence{}, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return evidence{}, fmt.Errorf("unsupported scheme: %s (only http/https)", u.Scheme)
	}
	if err := vetHost(ctx, u.Hostname()); err != nil {
		return evidence{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return evidence{}, err
	}
	resp, err := evidenceClient.Do(req)
	if err != nil {
		return evidence{}, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return evidence{}, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxEvidenceSize+1))
	if err != nil {
		return evidence{}, fmt.Errorf("read body failed: %w", err)
	}
	if len(data) > maxEvidenceSize {
		return evidence{}, fmt.Errorf("file too large: exceeds %d bytes", maxEvidenceSize)
	}
	mediaType, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	return evidence{data: data, ext: extensionFor(mediaType)}, nil
}
