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
	"fmt"
	"log/slog"
	"path"
	"strings"

	"foundermatch/modules/principal"

	"github.com/gabriel-vasile/mimetype"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	errPhotoEncoding  = validation.NewError("validation_photo_encoding", "must be base64 encoded image data")
	errPhotoContent   = validation.NewError("validation_photo_content", "must be a PNG, JPEG, GIF, WebP or AVIF image")
	errPhotoNamespace = validation.NewError("validation_photo_namespace", "must reference one of your own uploaded photos")
)

// rasterImageTypes are the sniffed content types accepted for upload.
var rasterImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp", "image/avif"}

// PhotoKeyOwnedBy reports whether an object key lies in the "<ownerID>/" namespace.
func PhotoKeyOwnedBy(key, ownerID string) bool {
	return ownerID != "" && key == path.Clean(key) && strings.HasPrefix(key, ownerID+"/")
}

// UploadPhoto stores a new photo for the owner and returns its public URL.
// Previously uploaded photos are left in place.
func (app *Application) UploadPhoto(ctx context.Context, p *principal.Principal, in UploadPhotoInput) (string, error) {
	if err := authorizeOwner(p, in.OwnerID, actionUploadPhoto); err != nil {
		return "", err
	}
	if err := in.Validate(); err != nil {
		return "", invalid(err)
	}

	data, err := decodePhoto(in.PhotoData)
	if err != nil {
		return "", invalid(validation.Errors{"photoData": errPhotoEncoding})
	}
	detected := mimetype.Detect(data)
	if !isRasterImage(detected) {
		return "", invalid(validation.Errors{"photoData": errPhotoContent})
	}
	if detected.String() != in.MimeType {
		slog.DebugContext(ctx, "declared photo type differs from content",
			slog.String("declared", in.MimeType), slog.String("detected", detected.String()))
	}

	ext := strings.TrimPrefix(detected.Extension(), ".")
	key := fmt.Sprintf("%s/%d-%s.%s", in.OwnerID, app.clock.Now().UnixMilli(), app.newToken(), ext)

	url, err := app.photos.PutPhoto(ctx, key, data, detected.String())
	if err != nil {
		slog.ErrorContext(ctx, "failed to store photo", slog.String("key", key), slog.Any("error", err))
		return "", unavailable(err)
	}
	return url, nil
}

func isRasterImage(m *mimetype.MIME) bool {
	for _, t := range rasterImageTypes {
		if m.Is(t) {
			return true
		}
	}
	return false
}

// removeOwnedPhoto deletes a stored photo of ownerID best-effort. URLs outside
// the bucket or outside the owner's namespace are left alone.
func (app *Application) removeOwnedPhoto(ctx context.Context, ownerID, publicURL string) {
	key, ok := app.photos.PhotoKey(publicURL)
	if !ok {
		return
	}
	if !PhotoKeyOwnedBy(key, ownerID) {
		slog.WarnContext(ctx, "refusing to remove a photo outside the owner namespace",
			slog.String("owner_id", ownerID), slog.String("key", key))
		return
	}
	if err := app.photos.RemovePhoto(ctx, ownerID, publicURL); err != nil {
		slog.WarnContext(ctx, "failed to remove profile photo",
			slog.String("photo_url", publicURL), slog.Any("error", err))
	}
}

// decodePhoto accepts raw base64 or a data URL ("data:image/png;base64,....").
func decodePhoto(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		_, rest, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, base64.CorruptInputError(0)
		}
		payload = rest
	}
	payload = strings.TrimSpace(payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, base64.CorruptInputError(0)
	}
	return data, nil
}
