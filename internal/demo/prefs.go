package demo

import (
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Glimmer/internal/engine"
)

const (
	prefObject = "glimmer"
	prefProp   = "prefs"
)

// prefData is the persisted slice of the demo's UI state.
type prefData struct {
	Intensity     engine.Intensity `yaml:"intensity"`
	ReducedMotion bool             `yaml:"reduced_motion"`
	ShowHUD       bool             `yaml:"show_hud"`
}

// prefStore persists prefData through gdata. A nil manager (storage
// unavailable) degrades to in-memory defaults; the demo stays usable.
type prefStore struct {
	m *gdata.Manager
}

func openPrefs() *prefStore {
	m, err := gdata.Open(gdata.Config{AppName: "glimmer-demo"})
	if err != nil {
		log.Printf("demo: preference storage unavailable: %v", err)
		return &prefStore{}
	}
	return &prefStore{m: m}
}

func (s *prefStore) load() (prefData, bool) {
	if s.m == nil || !s.m.ObjectPropExists(prefObject, prefProp) {
		return prefData{}, false
	}
	raw, err := s.m.LoadObjectProp(prefObject, prefProp)
	if err != nil {
		log.Printf("demo: load preferences: %v", err)
		return prefData{}, false
	}
	var p prefData
	if err := yaml.Unmarshal(raw, &p); err != nil {
		log.Printf("demo: corrupt preferences, ignoring: %v", err)
		return prefData{}, false
	}
	if p.Intensity < engine.IntensityLow || p.Intensity > engine.IntensityHigh {
		return prefData{}, false
	}
	return p, true
}

func (s *prefStore) save(p prefData) {
	if s.m == nil {
		return
	}
	raw, err := yaml.Marshal(p)
	if err != nil {
		log.Printf("demo: encode preferences: %v", err)
		return
	}
	if err := s.m.SaveObjectProp(prefObject, prefProp, raw); err != nil {
		log.Printf("demo: save preferences: %v", err)
	}
}
