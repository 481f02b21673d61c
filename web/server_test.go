package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dealerhub/importer"
	"dealerhub/record"
	"dealerhub/storage"
)

func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "dealerhub_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// brokenStore answers pings but rejects every write.
type brokenStore struct {
	pingErr error
}

func (b brokenStore) Ping(context.Context) error { return b.pingErr }
func (b brokenStore) WriteBatch(context.Context, []record.Document) error {
	return errors.New("disk full")
}
func (b brokenStore) MaxBatchWrites() int { return 0 }
func (b brokenStore) ListDocuments(context.Context, record.Kind) ([]record.Document, error) {
	return nil, errors.New("disk full")
}

func postCSV(t *testing.T, ts *httptest.Server, kind, body string) (*http.Response, importer.Result) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/import/"+kind, "text/csv", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result importer.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp, result
}

func TestServer_ImportRawCSV(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ts := httptest.NewServer(NewServer(store, nil, Options{}))
	defer ts.Close()

	resp, result := postCSV(t, ts, "dealer", "name,address,tractorBrands\nAcme,Main St 1,john_deere;claas\n,Side St 2,\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, result.Success)
	require.Equal(t, 2, result.TotalRows)
	require.Equal(t, 1, result.ImportedCount)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 2, result.Errors[0].RowIndex)

	docs, err := store.ListDocuments(context.Background(), record.KindDealer)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, result.ImportedIDs[0], docs[0].ID)
}

func TestServer_ImportStatusCodes(t *testing.T) {
	t.Parallel()

	t.Run("nothing valid", func(t *testing.T) {
		ts := httptest.NewServer(NewServer(openTestStore(t), nil, Options{}))
		defer ts.Close()

		resp, result := postCSV(t, ts, "unit", "serialNumber,model,status\nSN-1,M,broken\n")
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Equal(t, 0, result.ImportedCount)
		require.Contains(t, result.Errors[0].Message, "in_stock")
	})

	t.Run("store unavailable", func(t *testing.T) {
		ts := httptest.NewServer(NewServer(brokenStore{pingErr: errors.New("offline")}, nil, Options{}))
		defer ts.Close()

		resp, result := postCSV(t, ts, "site", "name,address\nBiogas Nord,Field Rd 7\n")
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		require.Equal(t, 0, result.TotalRows)
	})

	t.Run("no store", func(t *testing.T) {
		ts := httptest.NewServer(NewServer(nil, nil, Options{}))
		defer ts.Close()

		resp, _ := postCSV(t, ts, "site", "name,address\nBiogas Nord,Field Rd 7\n")
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("commit fails", func(t *testing.T) {
		ts := httptest.NewServer(NewServer(brokenStore{}, nil, Options{}))
		defer ts.Close()

		resp, result := postCSV(t, ts, "site", "name,address\nBiogas Nord,Field Rd 7\n")
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		require.Equal(t, 0, result.ImportedCount)
		require.True(t, strings.HasPrefix(result.Message, "Import failed:"))
	})

	t.Run("empty body", func(t *testing.T) {
		ts := httptest.NewServer(NewServer(openTestStore(t), nil, Options{}))
		defer ts.Close()

		resp, _ := postCSV(t, ts, "site", "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_ImportUnknownKind(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(NewServer(openTestStore(t), nil, Options{}))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/import/tractor", "text/csv", strings.NewReader("a\n1\n"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ImportMultipartXLSX(t *testing.T) {
	t.Parallel()

	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	require.NoError(t, workbook.SetSheetRow(sheet, "A1", &[]any{"name", "address", "feedstockTypes"}))
	require.NoError(t, workbook.SetSheetRow(sheet, "A2", &[]any{"Biogas Nord", "Field Rd 7", "maize;manure"}))
	var xlsx bytes.Buffer
	_, err := workbook.WriteTo(&xlsx)
	require.NoError(t, err)
	require.NoError(t, workbook.Close())

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "sites.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())

	store := openTestStore(t)
	ts := httptest.NewServer(NewServer(store, nil, Options{}))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/import/site", form.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	docs, err := store.ListDocuments(context.Background(), record.KindSite)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	site := docs[0].Payload.(record.Site)
	require.Equal(t, []string{"maize", "manure"}, site.FeedstockTypes)
	require.Equal(t, record.LocationUnresolved, site.Location.Status)
}

func TestServer_SchemaAndTemplate(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(NewServer(openTestStore(t), nil, Options{}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/schema/dealer")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view SchemaView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	require.Equal(t, record.KindDealer, view.Kind)
	require.Equal(t, "name", view.Fields[0].Name)
	require.True(t, view.Fields[0].Required)

	var brands FieldView
	for _, field := range view.Fields {
		if field.Name == "tractorBrands" {
			brands = field
		}
	}
	require.Equal(t, "delimitedList", brands.Kind)
	require.Equal(t, ";", brands.Delimiter)

	templateResp, err := http.Get(ts.URL + "/api/template/dealer")
	require.NoError(t, err)
	defer templateResp.Body.Close()
	content, err := io.ReadAll(templateResp.Body)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(content), "name,contactPerson,email"))
	require.Contains(t, templateResp.Header.Get("Content-Disposition"), "dealer_template.csv")
}

func TestServer_SchemaReportsConfiguredDelimiter(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ts := httptest.NewServer(NewServer(store, nil, Options{ListDelimiter: "|"}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/schema/site")
	require.NoError(t, err)
	defer resp.Body.Close()

	var view SchemaView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	var feedstock FieldView
	for _, field := range view.Fields {
		if field.Name == "feedstockTypes" {
			feedstock = field
		}
	}
	require.Equal(t, "|", feedstock.Delimiter)

	importResp, result := postCSV(t, ts, "site", "name,address,feedstockTypes\nBiogas Nord,Feldweg 3,maize|manure\n")
	require.Equal(t, http.StatusOK, importResp.StatusCode)
	require.Equal(t, 1, result.ImportedCount)

	docs, err := store.ListDocuments(context.Background(), record.KindSite)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, []string{"maize", "manure"}, docs[0].Payload.(record.Site).FeedstockTypes)
}

func TestServer_RecordsAndSummary(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(NewServer(openTestStore(t), nil, Options{}))
	defer ts.Close()

	resp, result := postCSV(t, ts, "unit", "serialNumber,model,status\nSN-1,M,installed\nSN-2,M,installed\nSN-3,M,maintenance\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, result.Success)

	recordsResp, err := http.Get(ts.URL + "/api/records/unit")
	require.NoError(t, err)
	defer recordsResp.Body.Close()
	var views []RecordView
	require.NoError(t, json.NewDecoder(recordsResp.Body).Decode(&views))
	require.Len(t, views, 3)

	summaryResp, err := http.Get(ts.URL + "/api/summary")
	require.NoError(t, err)
	defer summaryResp.Body.Close()
	var summaries []SummaryView
	require.NoError(t, json.NewDecoder(summaryResp.Body).Decode(&summaries))
	require.Len(t, summaries, 2)
	require.Equal(t, "installed", summaries[0].Status)
	require.Equal(t, 2, summaries[0].Count)
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	ok := httptest.NewServer(NewServer(openTestStore(t), nil, Options{}))
	defer ok.Close()
	resp, err := http.Get(ok.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	down := httptest.NewServer(NewServer(brokenStore{pingErr: errors.New("offline")}, nil, Options{}))
	defer down.Close()
	resp, err = http.Get(down.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
