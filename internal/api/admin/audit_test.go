package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

var auditSQLCols = []string{
	"id", "actor_user_id", "organization_id", "action", "resource_type",
	"resource_id", "metadata", "ip_address", "created_at",
}

func sampleAuditRow() *sqlmock.Rows {
	return sqlmock.NewRows(auditSQLCols).
		AddRow("audit-1", "admin-1", nil, "claim.approve", "claim",
			"claim-1", []byte(`{"claim_id":"claim-1"}`), nil, time.Now())
}

func newAuditRouter(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := NewAuditHandlers(db)

	r := gin.New()
	r.GET("/audit", h.ListAuditLogsHandler())
	return mock, r
}

func TestListAuditLogs_Success(t *testing.T) {
	mock, r := newAuditRouter(t)

	mock.ExpectQuery("SELECT COUNT.*FROM audit_logs").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT.*FROM audit_logs").
		WillReturnRows(sampleAuditRow())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/audit", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	if resp["audit_logs"] == nil {
		t.Error("response missing 'audit_logs' key")
	}
	if resp["pagination"] == nil {
		t.Error("response missing 'pagination' key")
	}
}

func TestListAuditLogs_ActionFilter(t *testing.T) {
	mock, r := newAuditRouter(t)

	mock.ExpectQuery("SELECT COUNT.*FROM audit_logs").WithArgs("claim.deny").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT.*FROM audit_logs").WithArgs("claim.deny", 20, 0).
		WillReturnRows(sqlmock.NewRows(auditSQLCols))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/audit?action=claim.deny", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
}

func TestListAuditLogs_DateRangeFilter(t *testing.T) {
	mock, r := newAuditRouter(t)

	mock.ExpectQuery("SELECT COUNT.*FROM audit_logs").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT.*FROM audit_logs").
		WillReturnRows(sqlmock.NewRows(auditSQLCols))

	w := httptest.NewRecorder()
	url := "/audit?start_date=2026-01-01T00:00:00Z&end_date=2026-02-01T00:00:00Z"
	r.ServeHTTP(w, httptest.NewRequest("GET", url, nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
}

func TestListAuditLogs_BadStartDate(t *testing.T) {
	_, r := newAuditRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/audit?start_date=yesterday", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: body=%s", w.Code, w.Body.String())
	}
}

func TestListAuditLogs_DBError(t *testing.T) {
	mock, r := newAuditRouter(t)

	mock.ExpectQuery("SELECT COUNT.*FROM audit_logs").
		WillReturnError(errDB)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/audit", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
