package expenditures

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmledger/farmledger/internal/farm"
	"github.com/farmledger/farmledger/internal/shared"
)

func newTestRouter(repo *mockRepository) http.Handler {
	handler := NewHandler(nil, newTestService(repo))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.ContextWithOwner(r.Context(), "u1")))
		})
	})
	handler.MountRoutes(r)
	return r
}

func TestCreateExpenditureHandler(t *testing.T) {
	body := `{"category":"Fertilizer","amount":1000,"frequency":"One-Time","allocationMethod":"fieldSize","cropsInvolved":["c1","c2"]}`
	rr := httptest.NewRecorder()
	newTestRouter(newMockRepository()).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/expenditures", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp struct {
		Success bool             `json:"success"`
		Data    farm.Expenditure `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data.Allocations, 2)
	assert.InDelta(t, 600, resp.Data.Allocations[1].AllocatedAmount, 1e-9)
	assert.Equal(t, farm.PaymentModeCash, resp.Data.PaymentMode)
}

func TestCreateExpenditureHandlerMissingCrop(t *testing.T) {
	body := `{"category":"Fertilizer","amount":10,"frequency":"One-Time","allocationMethod":"fieldSize","cropsInvolved":["nope"]}`
	rr := httptest.NewRecorder()
	newTestRouter(newMockRepository()).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/expenditures", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateExpenditureHandlerNonPositiveAmount(t *testing.T) {
	body := `{"category":"Fertilizer","amount":0,"frequency":"One-Time"}`
	rr := httptest.NewRecorder()
	newTestRouter(newMockRepository()).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/expenditures", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListCategoriesHandler(t *testing.T) {
	repo := newMockRepository()
	repo.categories = []string{"Fertilizer", "Labour"}
	rr := httptest.NewRecorder()
	newTestRouter(repo).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/expenditures/categories", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":["Fertilizer","Labour"]}`, rr.Body.String())
}

func TestListExpendituresBadDate(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(newMockRepository()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/expenditures?date=15-03-2024", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListExpendituresFilters(t *testing.T) {
	repo := newMockRepository()
	rr := httptest.NewRecorder()
	newTestRouter(repo).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/expenditures?category=Seeds&cropId=c1&date=2024-03-01", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Seeds", repo.lastFilter.Category)
	assert.Equal(t, "c1", repo.lastFilter.CropID)
	assert.Equal(t, "2024-03-01", repo.lastFilter.ExpenseDate.String())
}
