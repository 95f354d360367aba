package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kcarlton55/dwglog2/internal/dwglog/numbering"
	"github.com/kcarlton55/dwglog2/internal/dwglog/repository"
	"github.com/kcarlton55/dwglog2/internal/dwglog/service"
	"github.com/kcarlton55/dwglog2/internal/dwglog/sse"
	"github.com/kcarlton55/dwglog2/internal/dwglog/testutil"
	"gorm.io/gorm"
)

func setupAPI(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repo := repository.NewRecordRepository(db)
	logger := testutil.Logger()
	hub := sse.NewHub(logger)
	logSvc := service.NewLogService(repo, nil, logger, "unknown", 100)
	editSvc := service.NewEditService(repo, numbering.DefaultCatalog(), nil, logger)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	NewHandlers(logSvc, editSvc, hub).RegisterRoutes(api)
	return db, r
}

func TestAuthRequired(t *testing.T) {
	_, r := setupAPI(t)
	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/records", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestListRecords(t *testing.T) {
	db, r := setupAPI(t)
	testutil.SeedRecord(t, db, 202100855, "2021855", "0300-2021-855", "VACUUM PUMP, ROTARY VANE", "01/05/2021", "ken")
	testutil.SeedRecord(t, db, 202100856, "2021856", "6521-2021-856", "PANEL, CONTROL", "01/06/2021", "sue")

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/records", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data, ok := resp["data"].([]interface{})
	if !ok || len(data) != 2 {
		t.Fatalf("data = %v", resp["data"])
	}
	first := data[0].(map[string]interface{})
	if first["dwg"] != "2021856" {
		t.Errorf("first row = %v, want newest first", first["dwg"])
	}
}

func TestSearchRecords(t *testing.T) {
	db, r := setupAPI(t)
	testutil.SeedRecord(t, db, 202100855, "2021855", "0300-2021-855", "VACUUM PUMP, ROTARY VANE", "01/05/2021", "ken")
	testutil.SeedRecord(t, db, 202100856, "2021856", "6521-2021-856", "PANEL, CONTROL", "01/06/2021", "sue")

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/records/search?q=PANEL*", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	data, _ := resp["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("data = %v", resp["data"])
	}
	if data[0].(map[string]interface{})["dwg"] != "2021856" {
		t.Errorf("row = %v", data[0])
	}
}

func TestCreateRecord(t *testing.T) {
	_, r := setupAPI(t)
	year := time.Now().Year()

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/records",
		map[string]interface{}{"part": "0300", "description": "vacuum pump"},
		testutil.DefaultTestToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["dwg"] != fmt.Sprintf("%d001", year) {
		t.Errorf("dwg = %v", data["dwg"])
	}
	if data["part"] != fmt.Sprintf("0300-%d-001", year) {
		t.Errorf("part = %v, want autofilled prefix", data["part"])
	}
	if data["description"] != "VACUUM PUMP" {
		t.Errorf("description = %v", data["description"])
	}
	// Author falls back to the authenticated user's name.
	if data["author"] != "kcarlton" {
		t.Errorf("author = %v, want kcarlton from the token", data["author"])
	}
}

func TestCreateRecordBadBody(t *testing.T) {
	_, r := setupAPI(t)
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/records", "not an object", testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEditPreviewDoesNotWrite(t *testing.T) {
	db, r := setupAPI(t)
	testutil.SeedRecord(t, db, 202100855, "2021855", "0300-2021-855", "VACUUM PUMP, ROTARY VANE", "01/05/2021", "ken")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/records/2021855/edits/preview",
		map[string]interface{}{"column": 0, "value": "delete"},
		testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["kind"] != "delete" {
		t.Errorf("kind = %v", data["kind"])
	}
	if data["applied"] != false {
		t.Error("preview must not apply")
	}
	var count int64
	db.Table("dwgnos").Count(&count)
	if count != 1 {
		t.Errorf("row count = %d, preview wrote to the database", count)
	}
}

func TestEditApplyUnconfirmed(t *testing.T) {
	db, r := setupAPI(t)
	testutil.SeedRecord(t, db, 202100855, "2021855", "0300-2021-855", "VACUUM PUMP, ROTARY VANE", "01/05/2021", "ken")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/records/2021855/edits",
		map[string]interface{}{"column": 0, "value": "delete"},
		testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["applied"] != false {
		t.Error("unconfirmed apply must behave like a preview")
	}
	var count int64
	db.Table("dwgnos").Count(&count)
	if count != 1 {
		t.Errorf("row count = %d", count)
	}
}

func TestEditApplyConfirmed(t *testing.T) {
	db, r := setupAPI(t)
	testutil.SeedRecord(t, db, 202100855, "2021855", "0300-2021-855", "VACUUM PUMP, ROTARY VANE", "01/05/2021", "ken")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/records/2021855/edits",
		map[string]interface{}{"column": 4, "value": "Sue", "confirm": true},
		testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["applied"] != true {
		t.Errorf("applied = %v", data["applied"])
	}
	var authors []string
	db.Table("dwgnos").Where("dwg = ?", "2021855").Pluck("author", &authors)
	if len(authors) != 1 || authors[0] != "sue" {
		t.Errorf("author = %v, want [sue]", authors)
	}
}

func TestEditApplyRejectionNotApplied(t *testing.T) {
	db, r := setupAPI(t)
	testutil.SeedRecord(t, db, 202100855, "2021855", "0300-2021-855", "VACUUM PUMP, ROTARY VANE", "01/05/2021", "ken")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/records/2021855/edits",
		map[string]interface{}{"column": 0, "value": "2021999", "confirm": true},
		testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["kind"] != "reject" {
		t.Errorf("kind = %v", data["kind"])
	}
	if data["applied"] != false {
		t.Error("rejected edit must not be applied")
	}
}

func TestEditUnknownRecord(t *testing.T) {
	_, r := setupAPI(t)
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/records/1999999/edits/preview",
		map[string]interface{}{"column": 1, "value": "x"},
		testutil.DefaultTestToken())
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"] != float64(40402) {
		t.Errorf("code = %v", resp["code"])
	}
}

func TestEditMissingColumn(t *testing.T) {
	_, r := setupAPI(t)
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/records/2021855/edits/preview",
		map[string]interface{}{"value": "x"},
		testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEditColumnOutOfRange(t *testing.T) {
	_, r := setupAPI(t)
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/records/2021855/edits/preview",
		map[string]interface{}{"column": 5, "value": "x"},
		testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"] != float64(40003) {
		t.Errorf("code = %v", resp["code"])
	}
}
