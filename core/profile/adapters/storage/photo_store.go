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

package storage

import (
	"context"
	"log/slog"

	"foundermatch/core/profile/domain"
)

var _ domain.PhotoStore = (*PhotoStore)(nil)

// Objects is the subset of objectstore.Client used for profile photos.
type Objects interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	KeyFromURL(publicURL string) (string, bool)
}

type PhotoStore struct {
	objects Objects
}

func NewPhotoStore(objects Objects) *PhotoStore {
	return &PhotoStore{objects: objects}
}

func (s *PhotoStore) PutPhoto(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return s.objects.Put(ctx, key, data, contentType)
}

func (s *PhotoStore) PhotoKey(publicURL string) (string, bool) {
	return s.objects.KeyFromURL(publicURL)
}

// RemovePhoto is a no-op for URLs that do not point into the photo bucket,
// since photo_url may reference an external image, and for keys outside the
// owner's namespace.
func (s *PhotoStore) RemovePhoto(ctx context.Context, ownerID, publicURL string) error {
	key, ok := s.objects.KeyFromURL(publicURL)
	if !ok {
		slog.DebugContext(ctx, "photo url is not a stored object", slog.String("photo_url", publicURL))
		return nil
	}
	if !domain.PhotoKeyOwnedBy(key, ownerID) {
		slog.WarnContext(ctx, "photo key outside owner namespace",
			slog.String("owner_id", ownerID), slog.String("key", key))
		return nil
	}
	return s.objects.Remove(ctx, key)
}
