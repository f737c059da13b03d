// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"
	"time"

	"folio/internal/models"
)

func TestMediaStoreCreateAndList(t *testing.T) {
	s := NewMediaStore(testDB(t))
	ctx := context.Background()

	first, err := s.Create(ctx, &models.MediaAsset{
		Filename: "photo.png", URL: "/uploads/abc.png", Size: 1234, ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Errorf("created %+v", first)
	}

	time.Sleep(2 * time.Millisecond)
	thumb := "/uploads/def_thumb.jpg"
	second, _ := s.Create(ctx, &models.MediaAsset{
		Filename: "doc.pdf", URL: "/uploads/def.pdf", Size: 10, ThumbURL: &thumb,
	})

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("List should be newest first: %+v", list)
	}
	if list[0].ThumbURL == nil || *list[0].ThumbURL != thumb {
		t.Errorf("thumbUrl = %v", list[0].ThumbURL)
	}

	found, err := s.FindByID(ctx, first.ID)
	if err != nil || found == nil || found.Size != 1234 {
		t.Errorf("FindByID = %+v, %v", found, err)
	}
	missing, err := s.FindByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("FindByID(missing) = %v, %v", missing, err)
	}
}
