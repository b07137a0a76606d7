// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package domain

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
)

var errStoreDown = errors.New("connection refused")

// memProfiles implements both store ports over a map and counts every call.
type memProfiles struct {
	mu        sync.Mutex
	rows      map[string]*Profile
	seq       int
	calls     int
	failRead  error
	failWrite error
	failTouch error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{rows: map[string]*Profile{}}
}

func (m *memProfiles) GetProfileByOwner(_ context.Context, ownerID string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failRead != nil {
		return nil, m.failRead
	}
	row, ok := m.rows[ownerID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memProfiles) ListProfilesByOffset(_ context.Context, limit, offset int) ([]Profile, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failRead != nil {
		return nil, 0, m.failRead
	}
	all := make([]Profile, 0, len(m.rows))
	for _, row := range m.rows {
		all = append(all, *row)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return strings.Compare(all[i].ID.String(), all[j].ID.String()) > 0
	})
	if offset >= len(all) {
		return []Profile{}, len(all), nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], len(all), nil
}

func (m *memProfiles) UpsertProfile(_ context.Context, params *UpsertProfileParams) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failWrite != nil {
		return nil, m.failWrite
	}
	row, ok := m.rows[params.OwnerID]
	if !ok {
		m.seq++
		created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Minute)
		row = &Profile{
			ID:           uuid.Must(uuid.NewV4()),
			OwnerID:      params.OwnerID,
			CreatedAt:    created,
			LastActiveAt: created,
		}
		m.rows[params.OwnerID] = row
	}
	row.Name = params.Name
	row.Age = params.Age
	row.Occupation = params.Occupation
	row.TimeCommitment = params.TimeCommitment
	row.IsTechnical = params.IsTechnical
	row.HasIdea = params.HasIdea
	row.SkillAreas = params.SkillAreas
	row.ProfileCompleted = params.ProfileCompleted
	keep := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	keep(&row.Idea, params.Idea)
	keep(&row.LookingFor, params.LookingFor)
	keep(&row.Skills, params.Skills)
	keep(&row.LinkedIn, params.LinkedIn)
	keep(&row.PhotoURL, params.PhotoURL)
	row.UpdatedAt = row.CreatedAt
	cp := *row
	return &cp, nil
}

func (m *memProfiles) TouchLastActive(_ context.Context, ownerID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failTouch != nil {
		return m.failTouch
	}
	row, ok := m.rows[ownerID]
	if !ok {
		return ErrProfileNotFound
	}
	row.LastActiveAt = at
	return nil
}

func (m *memProfiles) DeleteProfile(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failWrite != nil {
		return m.failWrite
	}
	delete(m.rows, ownerID)
	return nil
}

func (m *memProfiles) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type memPhotos struct {
	mu         sync.Mutex
	objects    map[string][]byte
	types      map[string]string
	removed    []string
	calls      int
	failPut    error
	failRemove error
}

func newMemPhotos() *memPhotos {
	return &memPhotos{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memPhotos) PutPhoto(_ context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failPut != nil {
		return "", m.failPut
	}
	m.objects[key] = data
	m.types[key] = contentType
	return photoBase + key, nil
}

const photoBase = "https://cdn.example.com/profile-photos/"

func (m *memPhotos) PhotoKey(publicURL string) (string, bool) {
	if !strings.HasPrefix(publicURL, photoBase) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, photoBase), true
}

func (m *memPhotos) RemovePhoto(_ context.Context, ownerID, publicURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failRemove != nil {
		return m.failRemove
	}
	key, ok := m.PhotoKey(publicURL)
	if !ok || !PhotoKeyOwnedBy(key, ownerID) {
		return nil
	}
	m.removed = append(m.removed, publicURL)
	delete(m.objects, key)
	return nil
}

func (m *memPhotos) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func ptr[T any](v T) *T { return &v }
