package admin

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

// ---------------------------------------------------------------------------
// Column definitions for claim SQL mocks
// ---------------------------------------------------------------------------

var claimSQLCols = []string{
	"id", "restaurant_id", "user_id", "status", "evidence",
	"reviewed_by", "reviewed_at", "decision_notes", "created_at", "updated_at",
}

var claimContextCols = []string{
	"id", "restaurant_id", "user_id", "status", "evidence",
	"reviewed_by", "reviewed_at", "decision_notes", "created_at", "updated_at",
	"restaurant_name", "restaurant_slug", "user_name", "user_email",
}

// claimJoinCols are returned by the claim-with-names lookup that opens every
// claim decision transaction.
var claimJoinCols = []string{"id", "restaurant_id", "user_id", "status", "restaurant_name", "user_name"}

func samplePendingClaimRow() *sqlmock.Rows {
	return sqlmock.NewRows(claimSQLCols).
		AddRow("claim-1", "rest-1", "user-1", "pending", "I own this place",
			nil, nil, nil, time.Now(), time.Now())
}

func emptyClaimRows() *sqlmock.Rows {
	return sqlmock.NewRows(claimSQLCols)
}

func sampleClaimContextRow() *sqlmock.Rows {
	return sqlmock.NewRows(claimContextCols).
		AddRow("claim-1", "rest-1", "user-1", "pending", "I own this place",
			nil, nil, nil, time.Now(), time.Now(),
			"Pho Real", "pho-real", "Alice", "alice@example.com")
}

func claimJoinRow(restaurantID, userID string) *sqlmock.Rows {
	return sqlmock.NewRows(claimJoinCols).
		AddRow("claim-1", restaurantID, userID, "pending", "Pho Real", "Alice")
}

// ---------------------------------------------------------------------------
// Router helpers
// ---------------------------------------------------------------------------

// newClaimRouter registers all claim routes with an authenticated reviewer.
func newClaimRouter(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := NewClaimHandlers(db)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", "admin-1") })
	r.POST("/claims", h.FileClaimHandler())
	r.GET("/claims", h.ListClaimsHandler())
	r.GET("/claims/:id", h.GetClaimHandler())
	r.POST("/claims/:id/approve", h.ApproveClaimHandler())
	r.POST("/claims/:id/deny", h.DenyClaimHandler())
	return mock, r
}

// newAnonClaimRouter registers the same routes without an authenticated user.
func newAnonClaimRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := NewClaimHandlers(db)

	r := gin.New()
	r.POST("/claims", h.FileClaimHandler())
	r.POST("/claims/:id/approve", h.ApproveClaimHandler())
	r.POST("/claims/:id/deny", h.DenyClaimHandler())
	return r
}

func approveBody() map[string]interface{} {
	return map[string]interface{}{
		"restaurant_id": "rest-1",
		"user_id":       "user-1",
	}
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, jsonBody(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------------------------------------------------------------------------
// FileClaimHandler
// ---------------------------------------------------------------------------

func TestFileClaim_Success(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectQuery("SELECT verified_at FROM restaurants").WithArgs("rest-1").
		WillReturnRows(sqlmock.NewRows([]string{"verified_at"}).AddRow(nil))
	mock.ExpectQuery("SELECT COUNT.*FROM claims").WithArgs("rest-1", "admin-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO claims").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postJSON(r, "/claims", map[string]interface{}{
		"restaurant_id": "rest-1",
		"evidence":      "utility bill",
	})

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	if resp["claim"] == nil {
		t.Error("response missing 'claim' key")
	}
}

func TestFileClaim_RestaurantMissing(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectQuery("SELECT verified_at FROM restaurants").WithArgs("rest-x").
		WillReturnError(sql.ErrNoRows)

	w := postJSON(r, "/claims", map[string]interface{}{
		"restaurant_id": "rest-x",
		"evidence":      "utility bill",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestFileClaim_AlreadyVerified(t *testing.T) {
	mock, r := newClaimRouter(t)

	verifiedAt := time.Now()
	mock.ExpectQuery("SELECT verified_at FROM restaurants").WithArgs("rest-1").
		WillReturnRows(sqlmock.NewRows([]string{"verified_at"}).AddRow(verifiedAt))

	w := postJSON(r, "/claims", map[string]interface{}{
		"restaurant_id": "rest-1",
		"evidence":      "utility bill",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: body=%s", w.Code, w.Body.String())
	}
}

func TestFileClaim_DuplicatePending(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectQuery("SELECT verified_at FROM restaurants").WithArgs("rest-1").
		WillReturnRows(sqlmock.NewRows([]string{"verified_at"}).AddRow(nil))
	mock.ExpectQuery("SELECT COUNT.*FROM claims").WithArgs("rest-1", "admin-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	w := postJSON(r, "/claims", map[string]interface{}{
		"restaurant_id": "rest-1",
		"evidence":      "utility bill",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestFileClaim_Unauthenticated(t *testing.T) {
	r := newAnonClaimRouter(t)

	w := postJSON(r, "/claims", map[string]interface{}{
		"restaurant_id": "rest-1",
		"evidence":      "utility bill",
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestFileClaim_MissingEvidence(t *testing.T) {
	_, r := newClaimRouter(t)

	w := postJSON(r, "/claims", map[string]interface{}{
		"restaurant_id": "rest-1",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---------------------------------------------------------------------------
// ListClaimsHandler / GetClaimHandler
// ---------------------------------------------------------------------------

func TestListClaims_Success(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectQuery("SELECT COUNT.*FROM claims").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT.*FROM claims c.*JOIN restaurants").
		WillReturnRows(sampleClaimContextRow())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/claims", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	if resp["claims"] == nil {
		t.Error("response missing 'claims' key")
	}
	if resp["pagination"] == nil {
		t.Error("response missing 'pagination' key")
	}
}

func TestListClaims_StatusFilter(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectQuery("SELECT COUNT.*FROM claims").WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT.*FROM claims c.*JOIN restaurants").WithArgs("pending", 20, 0).
		WillReturnRows(sampleClaimContextRow())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/claims?status=pending", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
}

func TestListClaims_DBError(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectQuery("SELECT COUNT.*FROM claims").
		WillReturnError(errDB)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/claims", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestGetClaim_Success(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectQuery("SELECT.*FROM claims.*WHERE id").WithArgs("claim-1").
		WillReturnRows(samplePendingClaimRow())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/claims/claim-1", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	if resp["claim"] == nil {
		t.Error("response missing 'claim' key")
	}
}

func TestGetClaim_NotFound(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectQuery("SELECT.*FROM claims.*WHERE id").WithArgs("missing").
		WillReturnRows(emptyClaimRows())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/claims/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ---------------------------------------------------------------------------
// ApproveClaimHandler
// ---------------------------------------------------------------------------

func TestApproveClaim_ExistingOrg(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT c.id, c.restaurant_id.*FROM claims c").WithArgs("claim-1").
		WillReturnRows(claimJoinRow("rest-1", "user-1"))
	mock.ExpectExec("UPDATE claims.*SET status = 'approved'").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT o.id.*FROM organizations o.*JOIN organization_members").WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("org-1"))
	mock.ExpectExec("UPDATE restaurants").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := postJSON(r, "/claims/claim-1/approve", approveBody())

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	if resp["success"] != true {
		t.Error("response missing success=true")
	}
	if resp["org_id"] != "org-1" {
		t.Errorf("org_id = %v, want org-1", resp["org_id"])
	}
	if resp["org_created"] != false {
		t.Errorf("org_created = %v, want false", resp["org_created"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApproveClaim_PassesDecisionNotes(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT c.id, c.restaurant_id.*FROM claims c").WithArgs("claim-1").
		WillReturnRows(claimJoinRow("rest-1", "user-1"))
	mock.ExpectExec("UPDATE claims.*SET status = 'approved'.*decision_notes").
		WithArgs("claim-1", "admin-1", sqlmock.AnyArg(), "business license on file").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT o.id.*FROM organizations o.*JOIN organization_members").WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("org-1"))
	mock.ExpectExec("UPDATE restaurants").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := approveBody()
	body["decision_notes"] = "business license on file"
	w := postJSON(r, "/claims/claim-1/approve", body)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApproveClaim_CreatesOrganization(t *testing.T) {
	// Claimant has no memberships, so approval creates an org and makes
	// them its owner, all inside the same transaction.
	mock, r := newClaimRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT c.id, c.restaurant_id.*FROM claims c").WithArgs("claim-1").
		WillReturnRows(claimJoinRow("rest-1", "user-1"))
	mock.ExpectExec("UPDATE claims.*SET status = 'approved'").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT o.id.*FROM organizations o.*JOIN organization_members").WithArgs("user-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO organizations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO organization_members").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE restaurants").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := postJSON(r, "/claims/claim-1/approve", approveBody())

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	if resp["org_created"] != true {
		t.Errorf("org_created = %v, want true", resp["org_created"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApproveClaim_NotFound(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT c.id, c.restaurant_id.*FROM claims c").WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	w := postJSON(r, "/claims/missing/approve", approveBody())

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: body=%s", w.Code, w.Body.String())
	}
}

func TestApproveClaim_NotPending(t *testing.T) {
	// A concurrent reviewer already decided this claim: the conditional
	// status flip matches zero rows and nothing is written.
	mock, r := newClaimRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT c.id, c.restaurant_id.*FROM claims c").WithArgs("claim-1").
		WillReturnRows(claimJoinRow("rest-1", "user-1"))
	mock.ExpectExec("UPDATE claims.*SET status = 'approved'").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	w := postJSON(r, "/claims/claim-1/approve", approveBody())

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: body=%s", w.Code, w.Body.String())
	}
}

func TestApproveClaim_RestaurantMismatch(t *testing.T) {
	// The reviewer's confirmation names a different restaurant than the
	// claim row: stale data, so the approval is rejected untouched.
	mock, r := newClaimRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT c.id, c.restaurant_id.*FROM claims c").WithArgs("claim-1").
		WillReturnRows(claimJoinRow("rest-other", "user-1"))
	mock.ExpectRollback()

	w := postJSON(r, "/claims/claim-1/approve", approveBody())

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: body=%s", w.Code, w.Body.String())
	}
}

func TestApproveClaim_MissingBody(t *testing.T) {
	_, r := newClaimRouter(t)

	w := postJSON(r, "/claims/claim-1/approve", map[string]interface{}{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestApproveClaim_Unauthenticated(t *testing.T) {
	r := newAnonClaimRouter(t)

	w := postJSON(r, "/claims/claim-1/approve", approveBody())

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

// ---------------------------------------------------------------------------
// DenyClaimHandler
// ---------------------------------------------------------------------------

func TestDenyClaim_Success(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT c.id, c.restaurant_id.*FROM claims c").WithArgs("claim-1").
		WillReturnRows(claimJoinRow("rest-1", "user-1"))
	mock.ExpectExec("UPDATE claims.*SET status = 'denied'").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := postJSON(r, "/claims/claim-1/deny", map[string]interface{}{
		"decision_notes": "evidence did not match the listing",
	})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	if resp["success"] != true {
		t.Error("response missing success=true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDenyClaim_EmptyBody(t *testing.T) {
	// No body at all is valid; default decision notes are applied.
	mock, r := newClaimRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT c.id, c.restaurant_id.*FROM claims c").WithArgs("claim-1").
		WillReturnRows(claimJoinRow("rest-1", "user-1"))
	mock.ExpectExec("UPDATE claims.*SET status = 'denied'").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := httptest.NewRequest("POST", "/claims/claim-1/deny", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
}

func TestDenyClaim_NotPending(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT c.id, c.restaurant_id.*FROM claims c").WithArgs("claim-1").
		WillReturnRows(claimJoinRow("rest-1", "user-1"))
	mock.ExpectExec("UPDATE claims.*SET status = 'denied'").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	w := postJSON(r, "/claims/claim-1/deny", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: body=%s", w.Code, w.Body.String())
	}
}

func TestDenyClaim_NotFound(t *testing.T) {
	mock, r := newClaimRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT c.id, c.restaurant_id.*FROM claims c").WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	w := postJSON(r, "/claims/missing/deny", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
