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
	"errors"
	"net/url"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var imageMimeType = regexp.MustCompile(`^image/[a-z0-9][a-z0-9.+-]*$`)

var (
	errAgeRange = validation.NewError("validation_age_range", "must be between 1 and 150")
	errHTTPURL  = validation.NewError("validation_http_url", "must be an absolute http or https URL")
	errLimit    = validation.NewError("validation_page_limit", "must be between 1 and 100")
	errOffset   = validation.NewError("validation_page_offset", "must be no less than 0")
)

func (in UpsertProfileInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.OwnerID, validation.Required),
		validation.Field(&in.Email, validation.NilOrNotEmpty, is.EmailFormat),
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, maxNameLength)),
		validation.Field(&in.Age, validation.By(plausibleAge)),
		validation.Field(&in.Occupation, validation.Required, validation.In(anySlice(occupations)...)),
		validation.Field(&in.TimeCommitment, validation.Required, validation.In(anySlice(timeCommitments)...)),
		validation.Field(&in.SkillAreas, validation.Each(validation.In(anySlice(skillAreas)...))),
		validation.Field(&in.Idea, validation.RuneLength(0, maxFreeTextLength)),
		validation.Field(&in.LookingFor, validation.RuneLength(0, maxFreeTextLength)),
		validation.Field(&in.Skills, validation.RuneLength(0, maxFreeTextLength)),
		validation.Field(&in.LinkedIn, validation.RuneLength(0, maxURLLength), validation.By(absoluteHTTPURL)),
		validation.Field(&in.PhotoURL, validation.RuneLength(0, maxURLLength), validation.By(absoluteHTTPURL)),
	)
}

func (in UploadPhotoInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.OwnerID, validation.Required),
		validation.Field(&in.PhotoData, validation.Required, validation.Length(1, MaxPhotoPayloadLength)),
		validation.Field(&in.MimeType, validation.Required, validation.Match(imageMimeType)),
	)
}

func (in ListProfilesParams) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Limit, validation.By(func(value any) error {
			if v, ok := value.(*int); ok && v != nil && (*v < 1 || *v > MaxPageLimit) {
				return errLimit
			}
			return nil
		})),
		validation.Field(&in.Offset, validation.By(func(value any) error {
			if v, ok := value.(*int); ok && v != nil && *v < 0 {
				return errOffset
			}
			return nil
		})),
	)
}

// plausibleAge exists because validation.Min skips zero values.
func plausibleAge(value any) error {
	age, _ := value.(*int)
	if age == nil {
		return nil
	}
	if *age < 1 || *age > 150 {
		return errAgeRange
	}
	return nil
}

// absoluteHTTPURL accepts nil and empty strings.
func absoluteHTTPURL(value any) error {
	s, _ := value.(*string)
	if s == nil || *s == "" {
		return nil
	}
	u, err := url.Parse(*s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errHTTPURL
	}
	return nil
}

// FieldErrors flattens the field level messages carried by an ErrInvalidData error.
// Keys are wire field names. It returns nil when err carries none.
func FieldErrors(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	flatten("", verrs, out)
	return out
}

func flatten(prefix string, verrs validation.Errors, out map[string]string) {
	for field, ferr := range verrs {
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		var nested validation.Errors
		if errors.As(ferr, &nested) {
			flatten(key, nested, out)
			continue
		}
		out[key] = ferr.Error()
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
