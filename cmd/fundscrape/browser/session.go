package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/fundscrape/internal/logger"
)

// Cookie is one stored cookie. The JSON layout matches the cookie list
// written by Playwright's context.cookies(), so existing cookie files keep
// working.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"` // unix seconds, -1 for session cookies
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// LoadCookies reads a cookie file. A missing file yields no cookies.
func LoadCookies(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- cookie file path comes from user config
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cookies: %w", err)
	}
	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parsing cookies %s: %w", path, err)
	}
	return cookies, nil
}

// SaveCookies writes cookies to path as indented JSON.
func SaveCookies(path string, cookies []Cookie) error {
	if cookies == nil {
		cookies = []Cookie{}
	}
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating cookie directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing cookies: %w", err)
	}
	return nil
}

// cookieParams converts stored cookies for Network.setCookies.
func cookieParams(cookies []Cookie) []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if p.Path == "" {
			p.Path = "/"
		}
		if c.Expires > 0 {
			sec, frac := math.Modf(c.Expires)
			t := cdp.TimeSinceEpoch(time.Unix(int64(sec), int64(frac*1e9)))
			p.Expires = &t
		}
		switch network.CookieSameSite(c.SameSite) {
		case network.CookieSameSiteStrict, network.CookieSameSiteLax, network.CookieSameSiteNone:
			p.SameSite = network.CookieSameSite(c.SameSite)
		}
		params = append(params, p)
	}
	return params
}

// fromNetwork converts cookies read from the browser.
func fromNetwork(cookies []*network.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		expires := c.Expires
		if c.Session {
			expires = -1
		}
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: c.SameSite.String(),
		})
	}
	return out
}

// RestoreCookies loads the cookie file into the browser.
func (b *Browser) RestoreCookies(ctx context.Context) error {
	if b.config.CookieFile == "" {
		return nil
	}
	cookies, err := LoadCookies(b.config.CookieFile)
	if err != nil {
		return err
	}
	if len(cookies) == 0 {
		logger.Debug("no saved cookies", "path", b.config.CookieFile)
		return nil
	}
	err = b.Navigator().run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(cookieParams(cookies)).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("restoring cookies: %w", err)
	}
	logger.Info("cookies restored", "count", len(cookies), "path", b.config.CookieFile)
	return nil
}

// StoreCookies saves the browser's cookies for the current page to the
// cookie file.
func (b *Browser) StoreCookies(ctx context.Context) error {
	if b.config.CookieFile == "" {
		return nil
	}
	var cookies []*network.Cookie
	err := b.Navigator().run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return fmt.Errorf("reading cookies: %w", err)
	}
	if err := SaveCookies(b.config.CookieFile, fromNetwork(cookies)); err != nil {
		return err
	}
	logger.Info("cookies saved", "count", len(cookies), "path", b.config.CookieFile)
	return nil
}

// Login restores saved cookies, opens homeURL and leaves LoginWait for the
// user to sign in by hand, then saves the resulting cookies.
func (b *Browser) Login(ctx context.Context, homeURL string) error {
	if err := b.RestoreCookies(ctx); err != nil {
		logger.WarnContext(ctx, "could not restore cookies", "error", err)
	}

	if err := b.Navigator().Navigate(ctx, homeURL); err != nil {
		return fmt.Errorf("opening home page: %w", err)
	}
	if err := sleep(ctx, b.config.Settle); err != nil {
		return err
	}

	if b.config.LoginWait > 0 {
		logger.InfoContext(ctx, "waiting for manual login", "wait", b.config.LoginWait)
		if err := sleep(ctx, b.config.LoginWait); err != nil {
			return err
		}
	}

	return b.StoreCookies(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
