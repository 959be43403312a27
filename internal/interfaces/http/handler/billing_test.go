package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMultipartRequest(t *testing.T, target string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestBillingHandler_RecordPayment_Validation(t *testing.T) {
	h := NewBillingHandler(nil, nil, nil)

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{
			name:   "missing advance",
			fields: map[string]string{"mode": "UPI"},
		},
		{
			name:   "non-numeric advance",
			fields: map[string]string{"advance": "ten thousand", "mode": "CASH"},
		},
		{
			name:   "unknown payment mode",
			fields: map[string]string{"advance": "10000", "mode": "BARTER"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t)
			setJWTContext(c, uuid.New(), uuid.New())
			c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
			c.Request = newMultipartRequest(t, "/api/v1/family-heads/x/payments", tt.fields)

			h.RecordPayment(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestBillingHandler_RecordPayment_InvalidFamilyHeadID(t *testing.T) {
	h := NewBillingHandler(nil, nil, nil)

	c, w := newTestContext(t)
	setJWTContext(c, uuid.New(), uuid.New())
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	c.Request = newMultipartRequest(t, "/api/v1/family-heads/nope/payments",
		map[string]string{"advance": "100000", "mode": "UPI"})

	h.RecordPayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingHandler_SetPricing_Unauthenticated(t *testing.T) {
	h := NewBillingHandler(nil, nil, nil)

	c, w := newTestContext(t)
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
	c.Request = newJSONRequest(t, http.MethodPost, "/api/v1/family-heads/x/pricing", gin.H{
		"tour_price": "252250",
	})

	h.SetPricing(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBillingHandler_ProofURL_InvalidID(t *testing.T) {
	h := NewBillingHandler(nil, nil, nil)

	c, w := newTestContext(t)
	setJWTContext(c, uuid.New(), uuid.New())
	c.Params = gin.Params{{Key: "id", Value: "bad-id"}}

	h.ProofURL(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
