package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"os"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/config"
	"dealdesk/database"
)

const propsCSV = `Address,City,State,Zip,Living Square Feet,Listing Price,Condition
123 Main St,Austin,TX,78701,"2,000","$350,000",Good
456 Oak Ave,Austin,TX,78702,N/A,,
`

const compsCSV = `Last Sale Amount,Living Square Feet
"$200,000","1,000"
"$300,000","1,500"
`

func setupTest(t *testing.T) *sqlx.DB {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	_, err = config.LoadConfig()
	require.NoError(t, err)

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.InitDatabase(db))
	return db
}

func multipartRequest(t *testing.T, props, comps string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	pw, err := mw.CreateFormFile("propertyFile", "props.csv")
	require.NoError(t, err)
	pw.Write([]byte(props))

	cw, err := mw.CreateFormFile("compsFile", "comps.csv")
	require.NoError(t, err)
	cw.Write([]byte(comps))

	mw.WriteField("businessName", "Acme Homes LLC")
	mw.WriteField("userName", "Jordan Lee")
	mw.WriteField("userEmail", "jordan@acme.test")
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProcessUploadEndToEnd(t *testing.T) {
	db := setupTest(t)
	rec := httptest.NewRecorder()
	ProcessUploadHandler(db)(rec, multipartRequest(t, propsCSV, compsCSV))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.InDelta(t, 200.0, resp.AvgPricePerSqft, 1e-9)
	assert.Equal(t, 2, resp.CompsCount)
	require.Len(t, resp.Records, 2)

	assert.Equal(t, "123 Main St", resp.Records[0]["Address"])
	assert.InDelta(t, 400000.0, resp.Records[0]["ARV"].(float64), 1e-9)
	assert.Equal(t, "LOI_123_Main_St.html", resp.Records[0]["LOI File"])
	// Degraded row surfaces with empty markers, not dropped.
	assert.Equal(t, "", resp.Records[1]["ARV"])

	runs, err := database.ListRuns(db)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Acme Homes LLC", runs[0].BusinessName)
	assert.Equal(t, 2, runs[0].PropertyCount)

	props, err := database.GetRunProperties(db, resp.RunID)
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Nil(t, props[1].ARV)
}

func TestProcessUploadUnresolvableCompsColumns(t *testing.T) {
	db := setupTest(t)
	rec := httptest.NewRecorder()
	ProcessUploadHandler(db)(rec, multipartRequest(t, propsCSV, "Foo,Bar\n1,2\n"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "last sale amount")
}

func TestProcessUploadZeroValidComps(t *testing.T) {
	db := setupTest(t)
	badComps := "Last Sale Amount,Living Square Feet\n,0\nN/A,\n"
	rec := httptest.NewRecorder()
	ProcessUploadHandler(db)(rec, multipartRequest(t, propsCSV, badComps))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no valid comps")
}

func TestProcessUploadMissingFile(t *testing.T) {
	db := setupTest(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	ProcessUploadHandler(db)(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
