package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/sports-travel-platform/internal/money"
)

type fakeSource struct {
	stats   *Stats
	revenue *Revenue
	err     error
}

func (f fakeSource) Stats(context.Context) (*Stats, error)     { return f.stats, f.err }
func (f fakeSource) Revenue(context.Context) (*Revenue, error) { return f.revenue, f.err }

func TestHandlerGetOverview(t *testing.T) {
	src := fakeSource{
		stats:   &Stats{TotalLeads: 4, ConversionRate: 25, StatusBreakdown: StatusBreakdown{ClosedWon: 1, New: 3}},
		revenue: &Revenue{TotalRevenue: money.NewAmount(150000), AcceptedQuotesCount: 1},
	}
	rec := httptest.NewRecorder()
	NewHandler(src, nil).GetOverview(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Stats   Stats   `json:"stats"`
			Revenue Revenue `json:"revenue"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 4, body.Data.Stats.TotalLeads)
	assert.Equal(t, 1, body.Data.Stats.StatusBreakdown.ClosedWon)
	assert.True(t, body.Data.Revenue.TotalRevenue.Equal(money.NewAmount(150000)))
}

func TestHandlerErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(nil, nil).GetOverview(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	NewHandler(fakeSource{err: errors.New("db down")}, nil).GetOverview(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
