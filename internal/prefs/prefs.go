// Package prefs loads and saves the egg timer preferences file.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/egg-timer/internal/logic"
)

// Slider range for a custom duration.
const (
	MinMinutes = 1
	MaxMinutes = 30
)

// Preset is a named duration offered alongside the custom slider.
type Preset struct {
	Name    string
	Minutes int
}

// Presets lists the named boil times. Anything else is "Custom".
var Presets = []Preset{
	{Name: "Soft", Minutes: 6},
	{Name: "Medium", Minutes: 9},
	{Name: "Hard", Minutes: 12},
}

// CustomPreset is the name reported for durations that match no preset.
const CustomPreset = "Custom"

var ErrOutOfRange = fmt.Errorf("minutes must be between %d and %d", MinMinutes, MaxMinutes)

// Preferences is the persisted user choice.
type Preferences struct {
	// SelectedTime is the boil time in seconds. Zero or negative means unset.
	SelectedTime float64 `yaml:"selected_time"`
}

// SelectedDuration returns the chosen boil time, falling back to
// logic.DefaultDuration when unset or invalid. Values above the slider
// maximum count as invalid.
func (p Preferences) SelectedDuration() time.Duration {
	if p.SelectedTime > 0 && p.SelectedTime <= MaxMinutes*60 {
		return time.Duration(p.SelectedTime * float64(time.Second))
	}
	return logic.DefaultDuration
}

// SelectedMinutes returns the chosen boil time in whole minutes.
func (p Preferences) SelectedMinutes() int {
	return int(p.SelectedDuration() / time.Minute)
}

// SetMinutes stores a slider value after checking its range.
func (p *Preferences) SetMinutes(m int) error {
	if m < MinMinutes || m > MaxMinutes {
		return ErrOutOfRange
	}
	p.SelectedTime = float64(m * 60)
	return nil
}

// PresetFor returns the preset name for minutes, or CustomPreset.
func PresetFor(minutes int) string {
	for _, p := range Presets {
		if p.Minutes == minutes {
			return p.Name
		}
	}
	return CustomPreset
}

// Describe renders a minute count for display, e.g. "1 minute", "6 minutes".
func Describe(minutes int) string {
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

// Store reads and writes Preferences at Path.
type Store struct {
	Path string
}

// NewStore returns a Store for path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// DefaultPath returns ~/.egg-timer/prefs.yaml.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prefs.yaml"), nil
}

// DefaultDir returns the per-user data directory ~/.egg-timer.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".egg-timer"), nil
}

// Load reads the preferences file. A missing file yields zero
// Preferences, which report the default duration.
func (s *Store) Load() (Preferences, error) {
	var p Preferences
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read prefs: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preferences{}, fmt.Errorf("parse prefs %s: %w", s.Path, err)
	}
	return p, nil
}

// Save writes the preferences file, creating its directory.
func (s *Store) Save(p Preferences) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// Update loads, applies fn and saves.
func (s *Store) Update(fn func(*Preferences) error) (Preferences, error) {
	p, err := s.Load()
	if err != nil {
		return p, err
	}
	if err := fn(&p); err != nil {
		return p, err
	}
	return p, s.Save(p)
}
