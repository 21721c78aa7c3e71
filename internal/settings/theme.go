package settings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
)

// ThemeKey is the storage key of the colour theme preference.
const ThemeKey = "solix-theme"

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DefaultTheme applies when nothing valid is stored.
const DefaultTheme = ThemeDark

var ErrInvalidTheme = errors.New("settings: theme must be dark or light")

func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}

// ThemeState holds the active theme, initialised from storage and written
// back on every change.
type ThemeState struct {
	store Store

	mu    sync.RWMutex
	theme Theme
}

// LoadTheme reads the stored preference. Missing or unreadable values fall
// back to DefaultTheme; only the fallback is logged.
func LoadTheme(ctx context.Context, store Store) *ThemeState {
	ts := &ThemeState{store: store, theme: DefaultTheme}

	raw, err := store.Get(ctx, ThemeKey)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		log.Printf("[settings] load theme: %v; using %s", err, DefaultTheme)
	default:
		if t, perr := ParseTheme(raw); perr == nil {
			ts.theme = t
		} else {
			log.Printf("[settings] stored theme %q ignored; using %s", raw, DefaultTheme)
		}
	}
	return ts
}

func (ts *ThemeState) Current() Theme {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.theme
}

// Set persists t and makes it current. The in-memory value is unchanged
// when the write fails.
func (ts *ThemeState) Set(ctx context.Context, t Theme) error {
	t, err := ParseTheme(string(t))
	if err != nil {
		return err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.setLocked(ctx, t)
}

// Toggle flips between dark and light. The read and the write happen under
// one lock, so concurrent toggles alternate.
func (ts *ThemeState) Toggle(ctx context.Context) (Theme, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	next := ThemeLight
	if ts.theme == ThemeLight {
		next = ThemeDark
	}
	if err := ts.setLocked(ctx, next); err != nil {
		return ts.theme, err
	}
	return next, nil
}

func (ts *ThemeState) setLocked(ctx context.Context, t Theme) error {
	if err := ts.store.Set(ctx, ThemeKey, string(t)); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	ts.theme = t
	return nil
}
