package repositories

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newStatsRepo(t *testing.T) (*StatsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStatsRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestDuplicateSlugs(t *testing.T) {
	repo, mock := newStatsRepo(t)
	mock.ExpectQuery("GROUP BY slug.*HAVING COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"slug", "count"}).
			AddRow("soup-palace-new-york-ny", int64(3)).
			AddRow("pho-house-austin-tx", int64(2)))

	groups, err := repo.DuplicateSlugs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("len = %d, want 2", len(groups))
	}
	if groups[0].Count != 3 {
		t.Errorf("Count = %d, want 3", groups[0].Count)
	}
}

func TestDuplicateSlugs_None(t *testing.T) {
	repo, mock := newStatsRepo(t)
	mock.ExpectQuery("GROUP BY slug").
		WillReturnRows(sqlmock.NewRows([]string{"slug", "count"}))

	groups, err := repo.DuplicateSlugs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("len = %d, want 0", len(groups))
	}
}

func TestOrphanSoups(t *testing.T) {
	repo, mock := newStatsRepo(t)
	mock.ExpectQuery("LEFT JOIN restaurants.*WHERE r.id IS NULL").
		WillReturnRows(sqlmock.NewRows([]string{"soup_id", "restaurant_id", "name"}).
			AddRow("soup-1", "rest-gone", "Mystery Broth"))

	orphans, err := repo.OrphanSoups(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("len = %d, want 1", len(orphans))
	}
}

func TestCoverage_ComputesRatio(t *testing.T) {
	repo, mock := newStatsRepo(t)
	mock.ExpectQuery("restaurants_total").
		WillReturnRows(sqlmock.NewRows([]string{"restaurants_total", "restaurants_with_soups", "with_cuisine_tags"}).
			AddRow(int64(10), int64(4), int64(7)))

	stats, err := repo.Coverage(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.SoupCoverageRatio != 0.4 {
		t.Errorf("SoupCoverageRatio = %f, want 0.4", stats.SoupCoverageRatio)
	}
}

func TestCoverage_EmptyDirectory(t *testing.T) {
	repo, mock := newStatsRepo(t)
	mock.ExpectQuery("restaurants_total").
		WillReturnRows(sqlmock.NewRows([]string{"restaurants_total", "restaurants_with_soups", "with_cuisine_tags"}).
			AddRow(int64(0), int64(0), int64(0)))

	stats, err := repo.Coverage(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.SoupCoverageRatio != 0 {
		t.Errorf("SoupCoverageRatio = %f, want 0 for empty directory", stats.SoupCoverageRatio)
	}
}

func TestDashboardStats(t *testing.T) {
	repo, mock := newStatsRepo(t)
	cols := []string{
		"restaurant_count", "verified_count", "soup_count",
		"claims_pending", "claims_approved", "claims_denied", "org_count", "user_count",
	}
	mock.ExpectQuery("restaurant_count").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(120), int64(15), int64(300), int64(4), int64(12), int64(3), int64(14), int64(90)))

	counts, err := repo.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts.Restaurants != 120 {
		t.Errorf("Restaurants = %d, want 120", counts.Restaurants)
	}
	if counts.ClaimsPending != 4 {
		t.Errorf("ClaimsPending = %d, want 4", counts.ClaimsPending)
	}
}
