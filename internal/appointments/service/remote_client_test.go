package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecare-health/telecare-backend/internal/appointments/domain"
)

func TestRemoteClient_Create(t *testing.T) {
	t.Run("success returns the remote id", func(t *testing.T) {
		var gotAuth, gotKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/appointments", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			gotKey = r.Header.Get("Idempotency-Key")

			var rec domain.AppointmentRecord
			require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
			assert.Equal(t, "p1", rec.PatientID)

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "srv-42"})
		}))
		defer server.Close()

		client := NewRemoteClient(server.URL)
		id, err := client.Create(context.Background(), "tok-abc", videoBooking(), "key-1")
		require.NoError(t, err)
		assert.Equal(t, "srv-42", id)
		assert.Equal(t, "Bearer tok-abc", gotAuth)
		assert.Equal(t, "key-1", gotKey)
	})

	t.Run("missing ids fail before any request", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
		}))
		defer server.Close()

		client := NewRemoteClient(server.URL)
		rec := videoBooking()
		rec.PatientID = ""
		_, err := client.Create(context.Background(), "tok", rec, "")
		assert.ErrorIs(t, err, domain.ErrValidationFailed)
		assert.Zero(t, requests)
	})

	t.Run("server rejection maps onto the error taxonomy", func(t *testing.T) {
		cases := []struct {
			status int
			want   error
		}{
			{http.StatusBadRequest, domain.ErrValidationFailed},
			{http.StatusUnprocessableEntity, domain.ErrValidationFailed},
			{http.StatusInternalServerError, domain.ErrRemoteUnavailable},
			{http.StatusBadGateway, domain.ErrRemoteUnavailable},
		}
		for _, tc := range cases {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			client := NewRemoteClient(server.URL)
			_, err := client.Create(context.Background(), "tok", videoBooking(), "")
			assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
			server.Close()
		}
	})

	t.Run("unreachable store", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewRemoteClient(server.URL)
		_, err := client.Create(context.Background(), "tok", videoBooking(), "")
		assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	})
}

func TestRemoteClient_ListForSubject(t *testing.T) {
	t.Run("passes role, subject and filter as query params", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "doctor", q.Get("role"))
			assert.Equal(t, "doc1", q.Get("subject"))
			assert.Equal(t, "confirmed", q.Get("status"))

			json.NewEncoder(w).Encode([]domain.AppointmentRecord{
				{ID: "srv-1", PatientID: "p1", DoctorID: "doc1"},
			})
		}))
		defer server.Close()

		client := NewRemoteClient(server.URL)
		records, err := client.ListForSubject(context.Background(), "tok", "doctor", "doc1",
			domain.ListFilter{Status: domain.StatusConfirmed})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "srv-1", records[0].ID)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewRemoteClient(server.URL)
		_, err := client.ListForSubject(context.Background(), "tok", "patient", "p1", domain.ListFilter{})
		assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	})
}

func TestRemoteClient_GetByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/appointments/srv-1" {
			json.NewEncoder(w).Encode(domain.AppointmentRecord{ID: "srv-1"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL)

	rec, err := client.GetByID(context.Background(), "tok", "srv-1")
	require.NoError(t, err)
	assert.Equal(t, "srv-1", rec.ID)

	_, err = client.GetByID(context.Background(), "tok", "srv-404")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestRemoteClient_UpdateStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/appointments/srv-1/status", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cancelled", body["status"])
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL)
	err := client.UpdateStatus(context.Background(), "tok", "srv-1", domain.StatusCancelled)
	assert.NoError(t, err)
}
