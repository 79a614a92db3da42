package profile

import (
	"fmt"
	"sync"

	"github.com/facepilot/facepilot/internal/log"
	"github.com/facepilot/facepilot/pkg/expression"
	"github.com/facepilot/facepilot/pkg/gesture"
)

// Edit mutates the active profile. Edits queued from the operator
// surface are applied only between pipeline frames.
type Edit func(*Profile)

// Manager owns the profile set and the active selection. The pipeline
// goroutine reads the active profile every frame; operator goroutines
// queue edits which ApplyPending installs at the next frame boundary.
type Manager struct {
	store Store

	mu      sync.Mutex
	doc     *Document
	pending []Edit
}

// NewManager loads the document from the store. An empty store falls
// back to one default profile.
func NewManager(store Store) (*Manager, error) {
	doc, err := store.Load()
	if err != nil {
		return nil, err
	}

	if len(doc.Profiles) == 0 {
		def := Default("default")
		doc.Profiles = []*Profile{def}
		doc.ActiveID = def.ID
		if err := store.Save(doc); err != nil {
			return nil, fmt.Errorf("failed to save default profile: %w", err)
		}
		log.Info("created default profile", "id", def.ID)
	}

	if findProfile(doc, doc.ActiveID) == nil {
		doc.ActiveID = doc.Profiles[0].ID
	}

	return &Manager{store: store, doc: doc}, nil
}

// Active returns the active profile. The pipeline holds this pointer for
// the duration of a frame; edits never mutate it mid-frame.
func (m *Manager) Active() *Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return findProfile(m.doc, m.doc.ActiveID)
}

// Profiles returns a snapshot of all profiles
func (m *Manager) Profiles() []*Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Profile, len(m.doc.Profiles))
	copy(out, m.doc.Profiles)
	return out
}

// Select makes the given profile active
func (m *Manager) Select(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if findProfile(m.doc, id) == nil {
		return ErrNotFound
	}
	m.doc.ActiveID = id
	return m.store.Save(m.doc)
}

// Create adds a new default profile with the given name
func (m *Manager) Create(name string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := Default(name)
	m.doc.Profiles = append(m.doc.Profiles, p)
	if err := m.store.Save(m.doc); err != nil {
		return nil, err
	}
	return p, nil
}

// Rename changes a profile's name
func (m *Manager) Rename(id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := findProfile(m.doc, id)
	if p == nil {
		return ErrNotFound
	}
	p.Name = name
	return m.store.Save(m.doc)
}

// Delete removes a profile. The last profile cannot be deleted; deleting
// the active profile activates the first remaining one.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.doc.Profiles) <= 1 {
		return ErrLastProfile
	}

	idx := -1
	for i, p := range m.doc.Profiles {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	m.doc.Profiles = append(m.doc.Profiles[:idx], m.doc.Profiles[idx+1:]...)
	if m.doc.ActiveID == id {
		m.doc.ActiveID = m.doc.Profiles[0].ID
	}
	return m.store.Save(m.doc)
}

// QueueEdit queues a mutation of the active profile for the next frame
// boundary
func (m *Manager) QueueEdit(edit Edit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, edit)
}

// ApplyPending applies queued edits to the active profile and persists
// them. Called by the pipeline owner between frames. Returns true if any
// edit was applied.
func (m *Manager) ApplyPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending) == 0 {
		return false
	}

	active := findProfile(m.doc, m.doc.ActiveID)
	for _, edit := range m.pending {
		edit(active)
	}
	m.pending = nil

	if err := m.store.Save(m.doc); err != nil {
		log.Error("failed to persist profile edits", "err", err)
	}
	return true
}

// SetBaseline installs a freshly calibrated baseline into the active
// profile and persists it. The baseline is written in one step, never
// field by field.
func (m *Manager) SetBaseline(b expression.Baseline) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := findProfile(m.doc, m.doc.ActiveID)
	active.Baseline = b
	if err := m.store.Save(m.doc); err != nil {
		log.Error("failed to persist baseline", "err", err)
	}
}

// UpdateTrigger queues a trigger edit for one channel
func (m *Manager) UpdateTrigger(ch expression.Channel, trig gesture.Trigger) {
	m.QueueEdit(func(p *Profile) {
		if p.Triggers == nil {
			p.Triggers = make(map[expression.Channel]gesture.Trigger)
		}
		p.Triggers[ch] = trig
	})
}

// UpdateGains queues a gains edit
func (m *Manager) UpdateGains(g expression.Gains) {
	m.QueueEdit(func(p *Profile) { p.Gains = g })
}

// AddCombo queues adding a combo
func (m *Manager) AddCombo(c gesture.Combo) {
	m.QueueEdit(func(p *Profile) { p.Combos = append(p.Combos, c) })
}

// RemoveCombo queues removing the combo at the given index
func (m *Manager) RemoveCombo(idx int) {
	m.QueueEdit(func(p *Profile) {
		if idx < 0 || idx >= len(p.Combos) {
			return
		}
		p.Combos = append(p.Combos[:idx], p.Combos[idx+1:]...)
	})
}

// ToggleCombo queues flipping the enabled flag of the combo at idx
func (m *Manager) ToggleCombo(idx int) {
	m.QueueEdit(func(p *Profile) {
		if idx < 0 || idx >= len(p.Combos) {
			return
		}
		p.Combos[idx].Enabled = !p.Combos[idx].Enabled
	})
}

func findProfile(doc *Document, id string) *Profile {
	for _, p := range doc.Profiles {
		if p.ID == id {
			return p
		}
	}
	return nil
}
