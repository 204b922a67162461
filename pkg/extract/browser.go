package extract

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"golang.org/x/net/proxy"

	"tiktracker/pkg/config"
	apperrors "tiktracker/pkg/errors"
	"tiktracker/pkg/logger"
)

// Browser is the rod-backed extraction service. Profile existence is
// probed over plain HTTP; the metrics themselves come from a rendered
// page, because TikTok hydrates the video grid client-side.
type Browser struct {
	cfg    config.ExtractorConfig
	log    logger.Logger
	client *http.Client

	browser  *rod.Browser
	launcher *launcher.Launcher

	// Minimum delay between profile renders, shared by all sessions.
	profileMu   sync.Mutex
	lastProfile time.Time
}

// defaultTransport returns an http.Transport with connection pooling and
// keep-alive tuned for repeated profile probes.
func defaultTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
}

// NewBrowser creates the extraction service. The headless browser is not
// launched until Start is called.
func NewBrowser(cfg config.ExtractorConfig, log logger.Logger) *Browser {
	jar, _ := cookiejar.New(nil)
	b := &Browser{
		cfg: cfg,
		log: log,
		client: &http.Client{
			Jar:       jar,
			Timeout:   15 * time.Second,
			Transport: defaultTransport(),
		},
	}
	if cfg.Proxy != "" {
		if err := b.setHTTPProxy(cfg.Proxy); err != nil {
			log.WithError(err).Warn("proxy not usable for http probes, continuing direct")
		}
	}
	return b
}

// setHTTPProxy configures an HTTP/HTTPS or SOCKS5 proxy on the probe client.
func (b *Browser) setHTTPProxy(proxyAddr string) error {
	u, err := url.Parse(proxyAddr)
	if err != nil {
		return fmt.Errorf("parse proxy url: %w", err)
	}

	base := defaultTransport()
	switch u.Scheme {
	case "http", "https":
		base.Proxy = http.ProxyURL(u)
	case "socks5":
		var auth *proxy.Auth
		if u.User != nil {
			pass, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: pass}
		}
		dialer, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
		if err != nil {
			return fmt.Errorf("socks5 proxy: %w", err)
		}
		dc, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return fmt.Errorf("socks5: context dialer not supported")
		}
		base.DialContext = dc.DialContext
	default:
		return fmt.Errorf("unsupported proxy scheme: %s", u.Scheme)
	}
	b.client.Transport = base
	return nil
}

// Start launches headless Chrome, warms up a stealth page on the base URL
// so the site drops its session cookies, and syncs those cookies to the
// HTTP probe client.
func (b *Browser) Start() error {
	l := launcher.New().Headless(true)
	if b.cfg.Proxy != "" {
		l = l.Proxy(b.cfg.Proxy)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	b.launcher = l
	b.browser = browser

	b.setupResourceBlocking()

	warm, err := stealth.Page(browser)
	if err != nil {
		return fmt.Errorf("create stealth page: %w", err)
	}
	defer warm.Close()

	if err := warm.Navigate(b.cfg.BaseURL); err != nil {
		return fmt.Errorf("navigate to base url: %w", err)
	}
	if err := warm.WaitStable(2 * time.Second); err != nil {
		return fmt.Errorf("wait for warmup page: %w", err)
	}

	return b.syncCookiesFromBrowser()
}

// setupResourceBlocking drops heavyweight assets the SSR parse never needs.
func (b *Browser) setupResourceBlocking() {
	router := b.browser.HijackRequests()
	blocked := []string{"*.css", "*.png", "*.jpg", "*.jpeg", "*.mp4", "*.woff*", "*.svg", "*analytics*"}
	for _, pattern := range blocked {
		router.MustAdd(pattern, func(ctx *rod.Hijack) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		})
	}
	go router.Run()
}

func (b *Browser) syncCookiesFromBrowser() error {
	cookies, err := b.browser.GetCookies()
	if err != nil {
		return fmt.Errorf("get browser cookies: %w", err)
	}
	base, err := url.Parse(b.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	httpCookies := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		httpCookies = append(httpCookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	b.client.Jar.SetCookies(base, httpCookies)
	return nil
}

// Cookies returns the current session cookies for persistence across runs.
func (b *Browser) Cookies() []*http.Cookie {
	base, err := url.Parse(b.cfg.BaseURL)
	if err != nil {
		return nil
	}
	return b.client.Jar.Cookies(base)
}

// SetCookies installs cookies from a previous run on the probe client and,
// when the browser is up, on the browser itself.
func (b *Browser) SetCookies(cookies []*http.Cookie) error {
	base, err := url.Parse(b.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	b.client.Jar.SetCookies(base, cookies)

	if b.browser == nil {
		return nil
	}
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:   c.Name,
			Value:  c.Value,
			Domain: base.Hostname(),
			Path:   "/",
		})
	}
	if err := b.browser.SetCookies(params); err != nil {
		return fmt.Errorf("set browser cookies: %w", err)
	}
	return nil
}

// OpenSession creates a fresh stealth page.
func (b *Browser) OpenSession(ctx context.Context) (Session, error) {
	if b.browser == nil {
		return nil, apperrors.New(apperrors.ErrorTypeTransient, "browser not started")
	}
	page, err := stealth.Page(b.browser)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeTransient, "create stealth page", err)
	}
	return &pageSession{svc: b, page: page.Context(ctx)}, nil
}

// Close shuts down the headless browser.
func (b *Browser) Close() error {
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	if b.launcher != nil {
		b.launcher.Cleanup()
	}
	return err
}

// waitForProfile enforces the minimum delay between profile renders,
// with jitter so request timing does not look mechanical.
func (b *Browser) waitForProfile() {
	b.profileMu.Lock()
	defer b.profileMu.Unlock()
	if b.cfg.ProfileDelay == 0 {
		return
	}
	elapsed := time.Since(b.lastProfile)
	jitter := time.Duration(rand.Int63n(int64(500 * time.Millisecond)))
	if wait := b.cfg.ProfileDelay + jitter - elapsed; wait > 0 {
		time.Sleep(wait)
	}
	b.lastProfile = time.Now()
}

// checkExists probes the profile URL over HTTP. A 404 is the only signal
// treated as permanent absence.
func (b *Browser) checkExists(ctx context.Context, profileURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeTransient, "create probe request", err)
	}
	req.Header.Set("User-Agent", b.cfg.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := b.client.Do(req)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return apperrors.Wrap(apperrors.ErrorTypeTimeout, "profile probe timed out", err)
		}
		return apperrors.Wrap(apperrors.ErrorTypeTransient, "profile probe failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.New(apperrors.ErrorTypeNotFound, "profile does not exist")
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.New(apperrors.ErrorTypeTransient, "rate limited by target")
	case resp.StatusCode >= 500:
		return apperrors.New(apperrors.ErrorTypeTransient, fmt.Sprintf("server error %d", resp.StatusCode))
	}
	return nil
}
