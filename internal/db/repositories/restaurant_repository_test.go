package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/models"
)

// ---------------------------------------------------------------------------
// Column definitions
// ---------------------------------------------------------------------------

var restaurantCols = []string{
	"id", "name", "slug", "address", "city", "state", "zip", "latitude", "longitude",
	"phone", "website", "hours_json", "price_range", "cuisine_tags", "owner_org_id",
	"verified_at", "created_at", "updated_at",
}

// ---------------------------------------------------------------------------
// Row builders
// ---------------------------------------------------------------------------

func sampleRestaurantRow() *sqlmock.Rows {
	return sqlmock.NewRows(restaurantCols).
		AddRow("rest-1", "Soup Palace", "soup-palace-new-york-ny", "1 Broth Ave", "New York", "NY", "10001",
			40.71, -74.0, "212-555-0100", "https://souppalace.example", "{}", "$$",
			[]byte(`["vietnamese","ramen"]`), nil, nil, time.Now(), time.Now())
}

func emptyRestaurantRow() *sqlmock.Rows {
	return sqlmock.NewRows(restaurantCols)
}

func newRestaurantRepo(t *testing.T) (*RestaurantRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRestaurantRepository(db), mock
}

// ---------------------------------------------------------------------------
// GetRestaurantByID / GetRestaurantBySlug
// ---------------------------------------------------------------------------

func TestGetRestaurantByID_Found(t *testing.T) {
	repo, mock := newRestaurantRepo(t)
	mock.ExpectQuery("SELECT.*FROM restaurants WHERE id").
		WithArgs("rest-1").
		WillReturnRows(sampleRestaurantRow())

	restaurant, err := repo.GetRestaurantByID(context.Background(), "rest-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restaurant == nil {
		t.Fatal("expected restaurant, got nil")
	}
	if restaurant.Slug != "soup-palace-new-york-ny" {
		t.Errorf("Slug = %s, want soup-palace-new-york-ny", restaurant.Slug)
	}
	if len(restaurant.CuisineTags) != 2 {
		t.Errorf("CuisineTags len = %d, want 2", len(restaurant.CuisineTags))
	}
	if restaurant.IsVerified() {
		t.Error("restaurant with nil verified_at reported verified")
	}
}

func TestGetRestaurantByID_NotFound(t *testing.T) {
	repo, mock := newRestaurantRepo(t)
	mock.ExpectQuery("SELECT.*FROM restaurants WHERE id").
		WillReturnRows(emptyRestaurantRow())

	restaurant, err := repo.GetRestaurantByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restaurant != nil {
		t.Error("expected nil, got non-nil")
	}
}

func TestGetRestaurantBySlug_OldestWins(t *testing.T) {
	repo, mock := newRestaurantRepo(t)
	mock.ExpectQuery("SELECT.*FROM restaurants WHERE slug.*ORDER BY created_at ASC LIMIT 1").
		WithArgs("soup-palace-new-york-ny").
		WillReturnRows(sampleRestaurantRow())

	restaurant, err := repo.GetRestaurantBySlug(context.Background(), "soup-palace-new-york-ny")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restaurant == nil {
		t.Fatal("expected restaurant, got nil")
	}
}

// ---------------------------------------------------------------------------
// CreateRestaurant
// ---------------------------------------------------------------------------

func TestCreateRestaurant_AssignsID(t *testing.T) {
	repo, mock := newRestaurantRepo(t)
	mock.ExpectExec("INSERT INTO restaurants").
		WillReturnResult(sqlmock.NewResult(0, 1))

	restaurant := &models.Restaurant{
		Name:        "Soup Palace",
		Slug:        "soup-palace-new-york-ny",
		City:        "New York",
		State:       "NY",
		CuisineTags: []string{"ramen"},
	}
	if err := repo.CreateRestaurant(context.Background(), restaurant); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restaurant.ID == "" {
		t.Error("expected generated ID")
	}
	if restaurant.HoursJSON != "{}" {
		t.Errorf("HoursJSON = %q, want default {}", restaurant.HoursJSON)
	}
}

// ---------------------------------------------------------------------------
// UpdateRestaurant / DeleteRestaurant
// ---------------------------------------------------------------------------

func TestUpdateRestaurant_NotFound(t *testing.T) {
	repo, mock := newRestaurantRepo(t)
	mock.ExpectExec("UPDATE restaurants").
		WillReturnResult(sqlmock.NewResult(0, 0))

	restaurant := &models.Restaurant{ID: "missing", HoursJSON: "{}"}
	err := repo.UpdateRestaurant(context.Background(), restaurant)
	if err != sql.ErrNoRows {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestDeleteRestaurant_Found(t *testing.T) {
	repo, mock := newRestaurantRepo(t)
	mock.ExpectExec("DELETE FROM restaurants").
		WithArgs("rest-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteRestaurant(context.Background(), "rest-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ---------------------------------------------------------------------------
// SearchRestaurants
// ---------------------------------------------------------------------------

func TestSearchRestaurants_WithFilters(t *testing.T) {
	repo, mock := newRestaurantRepo(t)

	mock.ExpectQuery("SELECT COUNT.*FROM restaurants").
		WithArgs("%pho%", "New York", "NY").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT.*FROM restaurants.*ORDER BY name").
		WithArgs("%pho%", "New York", "NY", 20, 0).
		WillReturnRows(sampleRestaurantRow())

	filters := RestaurantFilters{Query: "pho", City: "New York", State: "NY"}
	restaurants, total, err := repo.SearchRestaurants(context.Background(), filters, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	if len(restaurants) != 1 {
		t.Fatalf("len = %d, want 1", len(restaurants))
	}
}

func TestSearchRestaurants_VerifiedOnly(t *testing.T) {
	repo, mock := newRestaurantRepo(t)

	mock.ExpectQuery("SELECT COUNT.*verified_at IS NOT NULL").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT.*verified_at IS NOT NULL").
		WithArgs(20, 0).
		WillReturnRows(emptyRestaurantRow())

	restaurants, total, err := repo.SearchRestaurants(context.Background(), RestaurantFilters{VerifiedOnly: true}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(restaurants) != 0 {
		t.Errorf("got total=%d len=%d, want empty", total, len(restaurants))
	}
}
