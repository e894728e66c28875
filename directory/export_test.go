package directory

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Graziano10/referral-admin/client"
)

func TestBuildExportBundle_ThreePages(t *testing.T) {
	dir := newFakeDir(120)
	docs, err := BuildExportBundle(context.Background(), dir, NewQuery().WithPage(2), ExportOptions{})
	require.NoError(t, err)
	assert.Len(t, docs, 120)

	calls := dir.listCalls()
	require.Len(t, calls, 3)
	for i, q := range calls {
		assert.Equal(t, i+1, q.Page)
		assert.Equal(t, 50, q.PageSize)
	}
}

func TestBuildExportBundle_Completeness(t *testing.T) {
	for _, total := range []int{0, 1, 49, 50, 51, 137} {
		for _, size := range []int{10, 20, 50} {
			dir := newFakeDir(total)
			docs, err := BuildExportBundle(context.Background(), dir, NewQuery(), ExportOptions{PageSize: size})
			require.NoError(t, err)
			require.Len(t, docs, total, "total=%d size=%d", total, size)
			seen := map[string]bool{}
			for _, d := range docs {
				require.False(t, seen[d.ID], "duplicate %s", d.ID)
				seen[d.ID] = true
			}
		}
	}
}

func TestBuildExportBundle_FollowsGrowingTotal(t *testing.T) {
	dir := newFakeDir(50)
	var pages int32
	dir.before = func(q client.ProfileQuery) error {
		if atomic.AddInt32(&pages, 1) == 1 {
			// A new sign-up lands after the first page was served.
			dir.mu.Lock()
			dir.profiles = append(dir.profiles, client.ProfileSummary{ID: "p999", Email: "late@example.com"})
			dir.mu.Unlock()
		}
		return nil
	}
	docs, err := BuildExportBundle(context.Background(), dir, NewQuery(), ExportOptions{})
	require.NoError(t, err)
	assert.Len(t, docs, 51)
	assert.Len(t, dir.listCalls(), 2)
}

func TestBuildExportBundle_RetriesRecoverable(t *testing.T) {
	dir := newFakeDir(60)
	var fails int32
	dir.before = func(q client.ProfileQuery) error {
		if q.Page == 2 && atomic.AddInt32(&fails, 1) <= 2 {
			return &client.APIError{Kind: client.KindServer, Category: client.Recoverable, StatusCode: 503, Message: "unavailable"}
		}
		return nil
	}
	docs, err := BuildExportBundle(context.Background(), dir, NewQuery(), ExportOptions{BaseBackoff: time.Millisecond})
	require.NoError(t, err)
	assert.Len(t, docs, 60)
}

func TestBuildExportBundle_StopsOnIrrecoverable(t *testing.T) {
	dir := newFakeDir(60)
	var calls int32
	dir.before = func(q client.ProfileQuery) error {
		atomic.AddInt32(&calls, 1)
		return &client.APIError{Kind: client.KindAuthorization, Category: client.Irrecoverable, StatusCode: 401, Message: "session expired"}
	}
	_, err := BuildExportBundle(context.Background(), dir, NewQuery(), ExportOptions{BaseBackoff: time.Millisecond})
	require.Error(t, err)
	assert.True(t, client.IsUnauthorized(err))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestBuildExportBundle_GivesUpAfterMaxAttempts(t *testing.T) {
	dir := newFakeDir(10)
	var calls int32
	flaky := errors.New("connection reset")
	dir.before = func(client.ProfileQuery) error {
		atomic.AddInt32(&calls, 1)
		return flaky
	}
	_, err := BuildExportBundle(context.Background(), dir, NewQuery(), ExportOptions{MaxAttempts: 2, BaseBackoff: time.Millisecond})
	require.ErrorIs(t, err, flaky)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func sampleDocs() []client.ProfileSummary {
	created := strfmt.DateTime(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	return []client.ProfileSummary{
		{ID: "a", UserID: "7", FirstName: "Anna", LastName: "Rossi", Email: "anna@example.com", Verified: true, ReferralCode: "REFA", CreatedAt: &created},
		{ID: "b", Email: "bob@example.com", CompanyName: "Alfa, Srl", ReferredBy: "REFA"},
	}
}

func TestWriteExport_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, FormatCSV, sampleDocs()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "anna@example.com", rows[1][4])
	assert.Equal(t, "2024-05-01T10:00:00Z", rows[1][len(Columns)-1])
	assert.Equal(t, "Alfa, Srl", rows[2][7], "commas must be quoted, not split")
}

func TestWriteExport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, FormatJSON, sampleDocs()))
	var back []client.ProfileSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Len(t, back, 2)

	buf.Reset()
	require.NoError(t, WriteExport(&buf, FormatJSON, nil))
	assert.JSONEq(t, "[]", buf.String())
}

func TestWriteExport_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, FormatXLSX, sampleDocs()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "_id", rows[0][0])
	assert.Equal(t, "bob@example.com", rows[2][4])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
