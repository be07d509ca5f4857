package messages

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/db/models"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:messages_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.ContactMessage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func TestSubmitNormalizesAndStores(t *testing.T) {
	svc, db := newTestService(t)

	message, err := svc.Submit(context.Background(), SubmitRequest{
		Name:    "  Marie Tremblay ",
		Email:   " Marie@Example.COM ",
		Subject: "Question sur les reçus",
		Body:    "Bonjour, je n'ai pas reçu mon reçu fiscal.",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if message.Email != "marie@example.com" || message.Name != "Marie Tremblay" {
		t.Fatalf("fields not normalized: %+v", message)
	}
	if message.IsRead {
		t.Fatalf("new messages start unread")
	}

	var count int64
	if err := db.Model(&models.ContactMessage{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one stored message, got %d", count)
	}
}

func TestSubmitRejectsBlankFields(t *testing.T) {
	svc, _ := newTestService(t)
	cases := []SubmitRequest{
		{Name: " ", Email: "a@b.com", Subject: "s", Body: "b"},
		{Name: "n", Email: "", Subject: "s", Body: "b"},
		{Name: "n", Email: "a@b.com", Subject: " ", Body: "b"},
		{Name: "n", Email: "a@b.com", Subject: "s", Body: ""},
	}
	for _, req := range cases {
		_, err := svc.Submit(context.Background(), req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestMarkReadFlagsExactlyOne(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	message, err := svc.Submit(ctx, SubmitRequest{
		Name:    "Marie",
		Email:   "marie@example.com",
		Subject: "s",
		Body:    "b",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := svc.MarkRead(ctx, message.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	rows, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || !rows[0].IsRead {
		t.Fatalf("message not flagged: %+v", rows)
	}

	err = svc.MarkRead(ctx, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
