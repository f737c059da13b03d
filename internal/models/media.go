// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// MediaAsset records an uploaded file. The bytes live in the configured
// storage backend; URL is where browsers fetch them.
type MediaAsset struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	ThumbURL    *string   `json:"thumbUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
