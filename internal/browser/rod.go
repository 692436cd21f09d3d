package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

type rodInstance struct {
	browser     *rod.Browser
	launcher    *launcher.Launcher
	navTimeout  time.Duration
	scrollDelay time.Duration
}

func launchRod(cfg Config) launchFunc {
	return func(ctx context.Context, profileDir string) (instance, error) {
		bin := cfg.BinPath
		if bin == "" {
			bin, _ = launcher.LookPath()
		}

		l := launcher.New().
			Bin(bin).
			UserDataDir(profileDir).
			Leakless(false).
			Headless(cfg.Headless).
			Set("disable-gpu").
			Set("no-sandbox")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("start chromium: %w", err)
		}

		browser := rod.New().ControlURL(u)
		if err := browser.Connect(); err != nil {
			l.Kill()
			return nil, fmt.Errorf("connect devtools: %w", err)
		}

		return &rodInstance{
			browser:     browser,
			launcher:    l,
			navTimeout:  cfg.NavTimeout,
			scrollDelay: cfg.ScrollDelay,
		}, nil
	}
}

func (r *rodInstance) render(ctx context.Context, url string, visit func(html string) bool) error {
	page, err := stealth.Page(r.browser)
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Timeout(r.navTimeout).Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.Timeout(r.navTimeout).WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}

	for {
		html, err := page.Timeout(r.navTimeout).HTML()
		if err != nil {
			return fmt.Errorf("read html: %w", err)
		}
		if !visit(html) {
			return nil
		}

		if err := page.Mouse.Scroll(0, 1000, 1); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.scrollDelay):
		}
	}
}

func (r *rodInstance) close() error {
	err := r.browser.Close()
	r.launcher.Kill()
	return err
}
