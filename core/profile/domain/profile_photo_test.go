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
	"encoding/base64"
	"testing"
	"time"

	"foundermatch/modules/principal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var svgBase64 = base64.StdEncoding.EncodeToString(
	[]byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`))

func TestUploadPhoto(t *testing.T) {
	t.Parallel()
	u1 := &principal.Principal{ID: "u1"}

	t.Run("stores the decoded image under a timestamped key", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		url, err := f.app.UploadPhoto(context.Background(), u1, UploadPhotoInput{
			OwnerID: "u1", PhotoData: pngBase64, MimeType: "image/png",
		})
		require.NoError(t, err)

		key := "u1/1748779200000-deadbeef.png"
		assert.Equal(t, "https://cdn.example.com/profile-photos/"+key, url)
		raw, _ := base64.StdEncoding.DecodeString(pngBase64)
		assert.Equal(t, raw, f.photos.objects[key])
		assert.Equal(t, "image/png", f.photos.types[key])
	})

	t.Run("accepts a data URL", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		_, err := f.app.UploadPhoto(context.Background(), u1, UploadPhotoInput{
			OwnerID: "u1", PhotoData: "data:image/png;base64," + pngBase64, MimeType: "image/png",
		})
		require.NoError(t, err)
		assert.Len(t, f.photos.objects, 1)
	})

	t.Run("stored content type comes from the bytes", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		_, err := f.app.UploadPhoto(context.Background(), u1, UploadPhotoInput{
			OwnerID: "u1", PhotoData: pngBase64, MimeType: "image/jpeg",
		})
		require.NoError(t, err)

		key := "u1/1748779200000-deadbeef.png"
		require.Contains(t, f.photos.objects, key)
		assert.Equal(t, "image/png", f.photos.types[key])
	})

	t.Run("previous photos are kept", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		in := UploadPhotoInput{OwnerID: "u1", PhotoData: pngBase64, MimeType: "image/png"}
		_, err := f.app.UploadPhoto(context.Background(), u1, in)
		require.NoError(t, err)
		f.clock.Advance(time.Second)
		_, err = f.app.UploadPhoto(context.Background(), u1, in)
		require.NoError(t, err)
		assert.Len(t, f.photos.objects, 2)
		assert.Empty(t, f.photos.removed)
	})

	invalid := []struct {
		name  string
		in    UploadPhotoInput
		field string
	}{
		{"non image mime type", UploadPhotoInput{OwnerID: "u1", PhotoData: pngBase64, MimeType: "application/pdf"}, "mimeType"},
		{"missing payload", UploadPhotoInput{OwnerID: "u1", MimeType: "image/png"}, "photoData"},
		{"not base64", UploadPhotoInput{OwnerID: "u1", PhotoData: "%%%not-base64%%%", MimeType: "image/png"}, "photoData"},
		{
			"bytes are not an image",
			UploadPhotoInput{OwnerID: "u1", PhotoData: base64.StdEncoding.EncodeToString([]byte("hello, plain text")), MimeType: "image/png"},
			"photoData",
		},
		{
			"svg is refused",
			UploadPhotoInput{OwnerID: "u1", PhotoData: svgBase64, MimeType: "image/svg+xml"},
			"photoData",
		},
		{
			"svg declared as png is refused",
			UploadPhotoInput{OwnerID: "u1", PhotoData: svgBase64, MimeType: "image/png"},
			"photoData",
		},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()
			_, err := f.app.UploadPhoto(context.Background(), u1, tc.in)
			require.ErrorIs(t, err, ErrInvalidData)
			assert.Contains(t, FieldErrors(err), tc.field)
			assert.Zero(t, f.photos.callCount())
		})
	}

	t.Run("storage failure is a collaborator failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.photos.failPut = errStoreDown
		_, err := f.app.UploadPhoto(context.Background(), u1, UploadPhotoInput{
			OwnerID: "u1", PhotoData: pngBase64, MimeType: "image/png",
		})
		assert.ErrorIs(t, err, ErrCollaboratorUnavailable)
	})
}
