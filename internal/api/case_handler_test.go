package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/cases"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseHandler(t *testing.T) {
	t.Parallel()

	lib, err := cases.Load("", quietLogger())
	require.NoError(t, err)
	h := NewCaseHandler(lib, quietLogger())

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.List(rec, newRequest(t, http.MethodGet, "/api/cases", nil, uuid.New()))

		require.Equal(t, http.StatusOK, rec.Code)
		var got []domain.CaseSummary
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Len(t, got, lib.Len())
		ids := make([]string, 0, len(got))
		for _, c := range got {
			ids = append(ids, c.ID)
		}
		assert.Contains(t, ids, "acute-chest-pain")
	})

	t.Run("detail hides checklist", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Get(rec, newRequest(t, http.MethodGet, "/api/cases/acute-chest-pain", nil, uuid.New(), "id", "acute-chest-pain"))

		require.Equal(t, http.StatusOK, rec.Code)
		var got CaseDetailResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "acute-chest-pain", got.ID)
		require.Len(t, got.Phases, len(domain.Phases))
		assert.Equal(t, domain.PhaseIntro, got.Phases[0].Phase)
		assert.NotContains(t, rec.Body.String(), "keywords")
	})

	t.Run("unknown", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Get(rec, newRequest(t, http.MethodGet, "/api/cases/nope", nil, uuid.New(), "id", "nope"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Case not found", decodeError(t, rec).Error)
	})
}
