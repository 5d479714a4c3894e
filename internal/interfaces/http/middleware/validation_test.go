package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	type scanInput struct {
		POID     string   `json:"po_id" binding:"required"`
		Location string   `json:"location" binding:"max=5"`
		ItemIDs  []string `json:"item_ids" binding:"min=1"`
	}

	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req scanInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	post := func(body string) (*httptest.ResponseRecorder, dto.Response) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return w, resp
	}

	t.Run("field errors use json names", func(t *testing.T) {
		w, resp := post(`{"location": "too-long-location", "item_ids": []}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", fields["po_id"])
		assert.Equal(t, "Must be at most 5 characters", fields["location"])
		assert.Equal(t, "Must contain at least 1 entries", fields["item_ids"])
	})

	t.Run("malformed json", func(t *testing.T) {
		w, resp := post(`{"po_id": `)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})

	t.Run("valid input", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"po_id": "x", "item_ids": ["a"]}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
