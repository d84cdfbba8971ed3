package tablequery_test

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"testing"

	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/justsurfingit/talent-tracker/internal/tablequery"
	"github.com/justsurfingit/talent-tracker/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedClients(t *testing.T, db *gorm.DB, n int, owner string) {
	t.Helper()
	for i := 1; i <= n; i++ {
		contract := "contract"
		if i%2 == 0 {
			contract = "full_time"
		}
		require.NoError(t, db.Create(&models.Client{
			UserID:       owner,
			Name:         fmt.Sprintf("Client %02d", i),
			ContractType: contract,
		}).Error)
	}
}

func TestFetchDefaults(t *testing.T) {
	db := testdb.New(t)
	seedClients(t, db, 12, "u1")

	page, err := tablequery.Fetch[models.Client](context.Background(), db, tablequery.Params{})
	require.NoError(t, err)

	assert.Equal(t, int64(12), page.TotalCount)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Data, 10)
	assert.Equal(t, "Client 01", page.Data[0].Name)

	page, err = tablequery.Fetch[models.Client](context.Background(), db, tablequery.Params{Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Client 11", page.Data[0].Name)
}

func TestFetchEmptyTable(t *testing.T) {
	db := testdb.New(t)

	page, err := tablequery.Fetch[models.Client](context.Background(), db, tablequery.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
	assert.Equal(t, 0, page.TotalPages)
}

func TestFetchOwnerFilter(t *testing.T) {
	db := testdb.New(t)
	seedClients(t, db, 3, "u1")
	seedClients(t, db, 2, "u2")

	page, err := tablequery.Fetch[models.Client](context.Background(), db, tablequery.Params{
		OwnerID:          "u2",
		ApplyOwnerFilter: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)

	// Without a known owner the filter is not applied.
	page, err = tablequery.Fetch[models.Client](context.Background(), db, tablequery.Params{ApplyOwnerFilter: true})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalCount)
}

func TestFetchFilters(t *testing.T) {
	db := testdb.New(t)
	for i, c := range []models.Candidate{
		{Name: "Ada", Email: "ada@example.com", ExpMin: 1, JobStatus: "new"},
		{Name: "Brian", Email: "brian@example.com", ExpMin: 4, JobStatus: "reviewed"},
		{Name: "Cleo", Email: "cleo@example.com", ExpMin: 7, JobStatus: "new"},
	} {
		c := c
		require.NoError(t, db.Create(&c).Error, "row %d", i)
	}

	tests := []struct {
		name    string
		filters map[string]tablequery.Filter
		want    []string
	}{
		{"bare equality", map[string]tablequery.Filter{"job_status": {Value: "new"}}, []string{"Ada", "Cleo"}},
		{"gte", map[string]tablequery.Filter{"exp_min": {Operator: tablequery.OpGte, Value: 4}}, []string{"Brian", "Cleo"}},
		{"lt", map[string]tablequery.Filter{"exp_min": {Operator: tablequery.OpLt, Value: 4}}, []string{"Ada"}},
		{"ne", map[string]tablequery.Filter{"job_status": {Operator: tablequery.OpNe, Value: "new"}}, []string{"Brian"}},
		{"ilike", map[string]tablequery.Filter{"name": {Operator: tablequery.OpILike, Value: "LE"}}, []string{"Cleo"}},
		{"empty value skipped", map[string]tablequery.Filter{"job_status": {Operator: tablequery.OpEq, Value: ""}}, []string{"Ada", "Brian", "Cleo"}},
		{"combined", map[string]tablequery.Filter{
			"job_status": tablequery.Eq("new"),
			"exp_min":    {Operator: tablequery.OpGt, Value: 2},
		}, []string{"Cleo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := tablequery.Fetch[models.Candidate](context.Background(), db, tablequery.Params{Filters: tt.filters})
			require.NoError(t, err)

			var names []string
			for _, c := range page.Data {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, int64(len(tt.want)), page.TotalCount)
		})
	}
}

func TestFetchSearchAndSort(t *testing.T) {
	db := testdb.New(t)
	for _, c := range []models.Candidate{
		{Name: "Ada", Email: "ada@acme.io", CurrentCompany: "Initech"},
		{Name: "Brian", Email: "brian@example.com", CurrentCompany: "Acme"},
		{Name: "Cleo", Email: "cleo@example.com", CurrentCompany: "Globex"},
	} {
		c := c
		require.NoError(t, db.Create(&c).Error)
	}

	page, err := tablequery.Fetch[models.Candidate](context.Background(), db, tablequery.Params{
		SearchTerm:    "acme",
		SearchColumns: []string{"email", "current_company"},
		SortColumn:    "name",
		SortDirection: tablequery.SortDesc,
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Brian", page.Data[0].Name)
	assert.Equal(t, "Ada", page.Data[1].Name)

	// A search term without columns is ignored.
	page, err = tablequery.Fetch[models.Candidate](context.Background(), db, tablequery.Params{SearchTerm: "acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)
}

func TestFetchForeignKeys(t *testing.T) {
	db := testdb.New(t)
	client := models.Client{Name: "Globex", ContractType: "contract"}
	require.NoError(t, db.Create(&client).Error)
	recruiter := models.UserProfile{Name: "Rita", Role: "lead"}
	require.NoError(t, db.Create(&recruiter).Error)
	require.NoError(t, db.Create(&models.JobPosting{
		Role:     "Backend Engineer",
		Skills:   []string{"go", "sql"},
		ClientID: &client.ID,
		AssignID: &recruiter.ID,
	}).Error)

	page, err := tablequery.Fetch[models.JobPosting](context.Background(), db, tablequery.Params{
		ForeignKeys: map[string][]string{
			"client":       {"id", "name"},
			"user_profile": {"name", "role"},
		},
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	job := page.Data[0]
	assert.Equal(t, []string{"go", "sql"}, job.Skills)
	require.NotNil(t, job.Client)
	assert.Equal(t, "Globex", job.Client.Name)
	assert.Empty(t, job.Client.ContractType, "unrequested columns are not selected")
	require.NotNil(t, job.UserProfile)
	assert.Equal(t, "Rita", job.UserProfile.Name)
}

func TestFetchRejectsUnknownNames(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	_, err := tablequery.Fetch[models.Client](ctx, db, tablequery.Params{SortColumn: "name; DROP TABLE clients"})
	assert.ErrorIs(t, err, tablequery.ErrUnknownColumn)

	_, err = tablequery.Fetch[models.Client](ctx, db, tablequery.Params{
		Filters: map[string]tablequery.Filter{"nope": tablequery.Eq("x")},
	})
	assert.ErrorIs(t, err, tablequery.ErrUnknownColumn)

	_, err = tablequery.Fetch[models.Client](ctx, db, tablequery.Params{
		Filters: map[string]tablequery.Filter{"name": {Operator: "regex", Value: "x"}},
	})
	assert.ErrorIs(t, err, tablequery.ErrInvalidOperator)

	_, err = tablequery.Fetch[models.Client](ctx, db, tablequery.Params{
		ForeignKeys: map[string][]string{"owner": nil},
	})
	assert.ErrorIs(t, err, tablequery.ErrUnknownRelation)
}

func TestParseQuery(t *testing.T) {
	values, err := url.ParseQuery("page=2&page_size=25&sort=created_at&order=DESC&search=go&search_columns=role,%20position&filter[job_status]=new&filter[exp_min]=gte:3&filter[notes]=a:b")
	require.NoError(t, err)

	p, err := tablequery.ParseQuery(values)
	require.NoError(t, err)

	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 25, p.PageSize)
	assert.Equal(t, "created_at", p.SortColumn)
	assert.Equal(t, tablequery.SortDesc, p.SortDirection)
	assert.Equal(t, "go", p.SearchTerm)
	assert.Equal(t, []string{"role", "position"}, p.SearchColumns)
	assert.Equal(t, tablequery.Filter{Operator: tablequery.OpEq, Value: "new"}, p.Filters["job_status"])
	assert.Equal(t, tablequery.Filter{Operator: tablequery.OpGte, Value: "3"}, p.Filters["exp_min"])
	assert.Equal(t, tablequery.Filter{Operator: tablequery.OpEq, Value: "a:b"}, p.Filters["notes"])
	assert.Equal(t, 25, p.Offset())
}

func TestOffsetClampsPage(t *testing.T) {
	p := tablequery.Params{Page: math.MaxInt, PageSize: tablequery.MaxPageSize}
	assert.Equal(t, (tablequery.MaxPage-1)*tablequery.MaxPageSize, p.Offset())
}

func TestParseQueryInvalid(t *testing.T) {
	for _, raw := range []string{"page=x", "page_size=-1", "order=sideways", "page=1000001", "page=9223372036854775807", "page=99999999999999999999"} {
		values, err := url.ParseQuery(raw)
		require.NoError(t, err)
		_, err = tablequery.ParseQuery(values)
		assert.ErrorIs(t, err, tablequery.ErrInvalidParam, raw)
	}
}
