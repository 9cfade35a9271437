package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/md-rashed-zaman/apptcrm/libs/clock"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

const (
	bizID   = "7b0c1f0e-4a55-4d4e-9a56-0b7c5e3f8a01"
	otherID = "2d7d4c44-5f3b-4b61-8f0f-6e9f2a1f0c02"
)

type fixture struct {
	repo  *fakeRepo
	svc   *Service
	redis *miniredis.Miniredis
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := newFakeRepo()
	clk := clock.NewFixed(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return fixture{repo: repo, svc: NewService(repo, NewCache(rdb, time.Minute), clk, logger), redis: mr}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Fade Studio":          "fade-studio",
		"  Joe's   Barber Shop": "joes-barber-shop",
		"Café Ünïcode 24/7":    "caf-ncode-247",
		"---":                  "",
		"A - B":                "a-b",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
	if !ValidSlug("fade-studio-2") || ValidSlug("Fade") || ValidSlug("a--b") || ValidSlug("-a") {
		t.Fatal("ValidSlug returned an unexpected result")
	}
}

func TestUpsertProfileCreatesWithUniqueSlug(t *testing.T) {
	f := newFixture(t)
	f.repo.businesses[otherID] = model.Business{ID: otherID, Slug: "fade-studio"}

	b, err := f.svc.UpsertProfile(context.Background(), bizID, ProfileInput{Name: "Sam", BusinessName: "Fade Studio"})
	if err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	if b.Slug != "fade-studio-1" {
		t.Fatalf("expected suffixed slug, got %q", b.Slug)
	}
	if _, ok := b.WorkingHours.ForWeekday(time.Monday); !ok {
		t.Fatalf("new business should get default working hours, got %+v", b.WorkingHours)
	}
	if _, ok := b.WorkingHours.ForWeekday(time.Sunday); ok {
		t.Fatal("default working hours should close sunday")
	}

	// Saving again without a slug keeps the existing one.
	b, err = f.svc.UpsertProfile(context.Background(), bizID, ProfileInput{Name: "Sam", BusinessName: "Renamed"})
	if err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	if b.Slug != "fade-studio-1" || b.BusinessName != "Renamed" {
		t.Fatalf("unexpected business %+v", b)
	}
}

func TestUpsertProfileExplicitSlug(t *testing.T) {
	f := newFixture(t)
	f.repo.businesses[otherID] = model.Business{ID: otherID, Slug: "taken"}
	ctx := context.Background()

	_, err := f.svc.UpsertProfile(ctx, bizID, ProfileInput{Name: "Sam", BusinessName: "Fade", Slug: "Taken"})
	if !errors.Is(err, model.ErrSlugTaken) {
		t.Fatalf("expected slug taken, got %v", err)
	}
	if _, ok := f.repo.businesses[bizID]; ok {
		t.Fatal("business must not be created when the slug is taken")
	}

	b, err := f.svc.UpsertProfile(ctx, bizID, ProfileInput{Name: "Sam", BusinessName: "Fade", Slug: "my-fade"})
	if err != nil || b.Slug != "my-fade" {
		t.Fatalf("UpsertProfile: %+v %v", b, err)
	}

	_, err = f.svc.UpsertProfile(ctx, bizID, ProfileInput{Name: "Sam", BusinessName: "Fade", Slug: "bad slug!"})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpsertProfileValidatesWorkingHours(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpsertProfile(context.Background(), bizID, ProfileInput{
		Name:         "Sam",
		BusinessName: "Fade",
		WorkingHours: model.WorkingHours{"Monday": {Enabled: true, Start: "17:00", End: "09:00"}},
	})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["workingHours.monday.end"]; !ok {
		t.Fatalf("expected monday end field error, got %v", verr.Fields)
	}

	_, err = f.svc.UpsertProfile(context.Background(), "owner-1", ProfileInput{Name: "Sam", BusinessName: "Fade"})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error for non-uuid business id, got %v", err)
	}
}

func TestPublicProfileReadsThroughCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.UpsertProfile(ctx, bizID, ProfileInput{Name: "Sam", BusinessName: "Fade Studio"}); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	if _, err := f.svc.CreateService(ctx, bizID, ServiceInput{Name: "Haircut", DurationMinutes: 45, Price: decimal.RequireFromString("25.5")}); err != nil {
		t.Fatalf("CreateService: %v", err)
	}

	p, err := f.svc.GetPublicProfile(ctx, "Fade-Studio")
	if err != nil {
		t.Fatalf("GetPublicProfile: %v", err)
	}
	if len(p.Services) != 1 || p.Services[0].Name != "Haircut" {
		t.Fatalf("unexpected profile %+v", p)
	}
	if !f.redis.Exists("profile:fade-studio") {
		t.Fatal("expected profile to be cached")
	}

	reads := f.repo.businessReads
	if _, err := f.svc.GetPublicProfile(ctx, "fade-studio"); err != nil {
		t.Fatalf("GetPublicProfile: %v", err)
	}
	if f.repo.businessReads != reads {
		t.Fatal("second read should be served from cache")
	}

	// Catalog changes drop the cached page.
	if _, err := f.svc.CreateService(ctx, bizID, ServiceInput{Name: "Shave", DurationMinutes: 15}); err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if f.redis.Exists("profile:fade-studio") {
		t.Fatal("expected cache invalidation after catalog change")
	}
	p, err = f.svc.GetPublicProfile(ctx, "fade-studio")
	if err != nil || len(p.Services) != 2 {
		t.Fatalf("expected refreshed catalog, got %+v %v", p, err)
	}
}

func TestPublicProfileSurvivesCacheOutage(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = rdb.Close() })
	repo := newFakeRepo()
	repo.businesses[bizID] = model.Business{ID: bizID, Slug: "fade"}
	svc := NewService(repo, NewCache(rdb, time.Minute), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	p, err := svc.GetPublicProfile(context.Background(), "fade")
	if err != nil || p.Business.ID != bizID {
		t.Fatalf("expected database fallback, got %+v %v", p, err)
	}
}

func TestPublicProfileNotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.GetPublicProfile(context.Background(), "nobody"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.svc.GetPublicProfile(context.Background(), " "); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found for blank slug, got %v", err)
	}
}

func TestServiceCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.UpsertProfile(ctx, bizID, ProfileInput{Name: "Sam", BusinessName: "Fade"}); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}

	t.Run("validation", func(t *testing.T) {
		cases := []ServiceInput{
			{Name: "", DurationMinutes: 30},
			{Name: "Cut", DurationMinutes: 0},
			{Name: "Cut", DurationMinutes: 30, Price: decimal.RequireFromString("-1")},
		}
		for _, in := range cases {
			if _, err := f.svc.CreateService(ctx, bizID, in); !errors.Is(err, model.ErrValidation) {
				t.Fatalf("CreateService(%+v): expected validation error, got %v", in, err)
			}
		}
	})

	t.Run("unknown business", func(t *testing.T) {
		if _, err := f.svc.CreateService(ctx, otherID, ServiceInput{Name: "Cut", DurationMinutes: 30}); !errors.Is(err, model.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	svc, err := f.svc.CreateService(ctx, bizID, ServiceInput{Name: " Cut ", DurationMinutes: 30, Price: decimal.RequireFromString("19.999")})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if svc.Name != "Cut" || svc.Price.String() != "20" {
		t.Fatalf("unexpected service %+v", svc)
	}

	updated, err := f.svc.UpdateService(ctx, bizID, svc.ID, ServiceInput{Name: "Long cut", DurationMinutes: 60, Price: decimal.RequireFromString("30")})
	if err != nil || updated.DurationMinutes != 60 || updated.CreatedAt != svc.CreatedAt {
		t.Fatalf("UpdateService: %+v %v", updated, err)
	}
	if _, err := f.svc.UpdateService(ctx, otherID, svc.ID, ServiceInput{Name: "x", DurationMinutes: 5}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("update from another business: expected not found, got %v", err)
	}

	if err := f.svc.DeleteService(ctx, otherID, svc.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("delete from another business: expected not found, got %v", err)
	}
	if err := f.svc.DeleteService(ctx, bizID, svc.ID); err != nil {
		t.Fatalf("DeleteService: %v", err)
	}
	list, err := f.svc.ListServices(ctx, bizID)
	if err != nil || len(list) != 0 {
		t.Fatalf("ListServices: %+v %v", list, err)
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	if NewCache(nil, time.Minute) != nil {
		t.Fatal("NewCache(nil) should return nil")
	}
	if _, ok, err := c.Get(context.Background(), "x"); ok || err != nil {
		t.Fatalf("nil cache Get: %v %v", ok, err)
	}
	if err := c.Set(context.Background(), model.PublicProfile{}); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
}
