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
	"time"
)

// ProfileReadStore defines the port for read operations on profiles.
//
// Implementations may be bound to a read replica. All methods are read-only.
type ProfileReadStore interface {
	// GetProfileByOwner returns ErrProfileNotFound when the owner has no profile.
	GetProfileByOwner(ctx context.Context, ownerID string) (*Profile, error)

	// ListProfilesByOffset returns one page ordered by (created_at DESC, id DESC)
	// together with the count of all profiles.
	//
	// Offset pagination makes the store scan and discard skipped rows; the
	// profile collection is small enough for that to be acceptable.
	ListProfilesByOffset(ctx context.Context, limit, offset int) ([]Profile, int, error)
}

// ProfileWriteStore defines the port for write operations on profiles.
//
// All writes go to the primary. Uniqueness of the owner identifier is enforced
// by the store, which makes UpsertProfile safe under concurrent saves.
type ProfileWriteStore interface {
	// UpsertProfile inserts or updates the profile keyed by owner and returns
	// the stored row.
	UpsertProfile(ctx context.Context, params *UpsertProfileParams) (*Profile, error)

	// TouchLastActive sets last_active_at. Returns ErrProfileNotFound when absent.
	TouchLastActive(ctx context.Context, ownerID string, at time.Time) error

	// DeleteProfile permanently removes the owner's profile. Deleting a missing
	// profile is not an error.
	DeleteProfile(ctx context.Context, ownerID string) error
}

// PhotoStore is the outbound port to the object storage holding profile photos.
type PhotoStore interface {
	// PutPhoto stores data under key and returns its public URL.
	PutPhoto(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// PhotoKey returns the object key behind publicURL. ok is false when the
	// URL does not point into the photo bucket.
	PhotoKey(publicURL string) (key string, ok bool)

	// RemovePhoto deletes the object referenced by publicURL. Objects outside
	// ownerID's namespace are never removed.
	RemovePhoto(ctx context.Context, ownerID, publicURL string) error
}
