// Package settings persists the two user preferences, cut sound and color
// theme, in a key-value store. Storage failures are logged and never stop
// the caller.
package settings

import (
	"strconv"

	"go.uber.org/zap"
)

const (
	KeySoundEnabled = "sound_enabled"
	KeyTheme        = "theme"

	DefaultSoundEnabled = true
	DefaultTheme        = ThemeSystem
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func ParseTheme(s string) (Theme, bool) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, true
	}
	return "", false
}

// Next cycles light, dark, system.
func (t Theme) Next() Theme {
	switch t {
	case ThemeLight:
		return ThemeDark
	case ThemeDark:
		return ThemeSystem
	}
	return ThemeLight
}

// Resolve maps system to light or dark using darkBackground.
func (t Theme) Resolve(darkBackground func() bool) Theme {
	if t != ThemeSystem {
		return t
	}
	if darkBackground != nil && darkBackground() {
		return ThemeDark
	}
	return ThemeLight
}

type Settings struct {
	store Store
	log   *zap.Logger

	soundEnabled bool
	theme        Theme
}

// Load reads both preferences once. A missing or invalid value falls back to
// its default, which is written back to the store.
func Load(store Store, log *zap.Logger) *Settings {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Settings{store: store, log: log.Named("settings")}
	s.Reload()
	return s
}

// Reload re-reads the store, e.g. after the settings file changed on disk.
func (s *Settings) Reload() {
	s.soundEnabled = s.loadSound()
	s.theme = s.loadTheme()
}

func (s *Settings) loadSound() bool {
	raw, ok, err := s.store.Get(KeySoundEnabled)
	if err != nil {
		s.log.Warn("read sound setting", zap.Error(err))
		return DefaultSoundEnabled
	}
	if ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	s.persist(KeySoundEnabled, strconv.FormatBool(DefaultSoundEnabled))
	return DefaultSoundEnabled
}

func (s *Settings) loadTheme() Theme {
	raw, ok, err := s.store.Get(KeyTheme)
	if err != nil {
		s.log.Warn("read theme setting", zap.Error(err))
		return DefaultTheme
	}
	if ok {
		if t, valid := ParseTheme(raw); valid {
			return t
		}
	}
	s.persist(KeyTheme, string(DefaultTheme))
	return DefaultTheme
}

func (s *Settings) persist(key, value string) {
	if err := s.store.Set(key, value); err != nil {
		s.log.Warn("write setting", zap.String("key", key), zap.Error(err))
	}
}

func (s *Settings) SoundEnabled() bool { return s.soundEnabled }

func (s *Settings) SetSoundEnabled(enabled bool) {
	s.soundEnabled = enabled
	s.persist(KeySoundEnabled, strconv.FormatBool(enabled))
}

func (s *Settings) ToggleSound() bool {
	s.SetSoundEnabled(!s.soundEnabled)
	return s.soundEnabled
}

func (s *Settings) Theme() Theme { return s.theme }

func (s *Settings) SetTheme(t Theme) {
	s.theme = t
	s.persist(KeyTheme, string(t))
}

func (s *Settings) CycleTheme() Theme {
	s.SetTheme(s.theme.Next())
	return s.theme
}
