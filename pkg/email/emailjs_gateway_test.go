package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAssignment() Assignment {
	return Assignment{
		ProviderName:  "Ravi Patil",
		ProviderEmail: "ravi@example.com",
		CustomerName:  "Asha",
		CustomerPhone: "9876543210",
		ServiceName:   "Plumbing",
		Date:          "2024-06-01",
		Time:          "10:30",
		Address:       "Plot 12",
		Area:          "Cidco N-2",
		Amount:        499.5,
	}
}

func TestNewEmailJSGateway(t *testing.T) {
	gateway := NewEmailJSGateway(EmailJSConfig{
		ServiceID:  "service_x",
		TemplateID: "template_y",
		PublicKey:  "pk_z",
	})

	assert.Equal(t, DefaultEmailJSURL, gateway.apiURL)
	assert.Equal(t, "service_x", gateway.serviceID)
	assert.Equal(t, "emailjs", gateway.GetName())
	assert.NotNil(t, gateway.client)
}

func TestTemplateParams(t *testing.T) {
	params := TemplateParams(testAssignment())

	assert.Equal(t, "Plot 12, Cidco N-2", params["booking_location"])
	assert.Equal(t, "499.5", params["budget"])
	assert.Equal(t, "New Job Assigned: Plumbing at Plot 12, Cidco N-2", params["message"])
	assert.Equal(t, "ravi@example.com", params["to_email"])
	assert.Equal(t, "Ravi Patil", params["to_name"])

	noAddress := testAssignment()
	noAddress.Address = ""
	assert.Equal(t, "Cidco N-2", TemplateParams(noAddress)["booking_location"])
}

func TestSendAssignment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var got sendRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		}))
		defer server.Close()

		gateway := NewEmailJSGateway(EmailJSConfig{
			APIURL:     server.URL,
			ServiceID:  "service_x",
			TemplateID: "template_y",
			PublicKey:  "pk_z",
		})

		err := gateway.SendAssignment(context.Background(), testAssignment())
		require.NoError(t, err)
		assert.Equal(t, "service_x", got.ServiceID)
		assert.Equal(t, "template_y", got.TemplateID)
		assert.Equal(t, "pk_z", got.UserID)
		assert.Equal(t, "Asha", got.TemplateParams["customer_name"])
	})

	t.Run("Non-200 response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("The template ID is invalid"))
		}))
		defer server.Close()

		gateway := NewEmailJSGateway(EmailJSConfig{APIURL: server.URL})
		err := gateway.SendAssignment(context.Background(), testAssignment())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
	})

	t.Run("Missing recipient", func(t *testing.T) {
		gateway := NewEmailJSGateway(EmailJSConfig{APIURL: "http://127.0.0.1:0"})
		a := testAssignment()
		a.ProviderEmail = ""
		assert.ErrorIs(t, gateway.SendAssignment(context.Background(), a), ErrMissingRecipient)
	})
}
