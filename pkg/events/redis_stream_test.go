package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"bookcatalog/pkg/domain"
)

func TestRedisStreamPublisherAppendsEvent(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	p, err := NewRedisStreamPublisher(RedisStreamConfig{Addr: redisSrv.Addr(), Stream: "test:events"})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer p.Close()

	ctx := context.Background()
	book := domain.Book{ID: 3, Name: "Updated Book", Author: "Updated Author", Year: 2022, IsElectronicBook: true}
	if err := p.Publish(ctx, domain.BookEvent{
		ID:         "evt-1",
		Type:       domain.EventBookUpdated,
		BookID:     book.ID,
		Book:       &book,
		OccurredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msgs, err := p.client.XRange(ctx, "test:events", "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected one stream entry, got %d", len(msgs))
	}
	values := msgs[0].Values
	if values["type"] != "book.updated" || values["book_id"] != "3" || values["event_id"] != "evt-1" {
		t.Fatalf("unexpected entry: %+v", values)
	}
	var got domain.Book
	if err := json.Unmarshal([]byte(values["book"].(string)), &got); err != nil {
		t.Fatalf("decode book: %v", err)
	}
	if got != book {
		t.Fatalf("book mismatch: got %+v want %+v", got, book)
	}
}

func TestRedisStreamPublisherOmitsBookOnDelete(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	p, err := NewRedisStreamPublisher(RedisStreamConfig{Addr: redisSrv.Addr()})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer p.Close()

	ctx := context.Background()
	if err := p.Publish(ctx, domain.BookEvent{ID: "evt-2", Type: domain.EventBookDeleted, BookID: 1}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	msgs, err := p.client.XRange(ctx, "catalog:book-events", "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected one stream entry, got %d", len(msgs))
	}
	if _, ok := msgs[0].Values["book"]; ok {
		t.Fatalf("delete event should not carry a book: %+v", msgs[0].Values)
	}
}

func TestRedisStreamPublisherFailsWhenRedisDown(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	p, err := NewRedisStreamPublisher(RedisStreamConfig{Addr: redisSrv.Addr()})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer p.Close()
	redisSrv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Publish(ctx, domain.BookEvent{ID: "evt-3", Type: domain.EventBookCreated, BookID: 1}); err == nil {
		t.Fatalf("expected publish error when redis is unavailable")
	}
}

func TestNewRedisStreamPublisherRequiresAddr(t *testing.T) {
	if _, err := NewRedisStreamPublisher(RedisStreamConfig{}); err == nil {
		t.Fatalf("expected error for empty redis addr")
	}
}
