package unit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appthttp "github.com/telecare-health/telecare-backend/internal/appointments/http"
	apptrepo "github.com/telecare-health/telecare-backend/internal/appointments/repository"
	apptservice "github.com/telecare-health/telecare-backend/internal/appointments/service"
	rolesdomain "github.com/telecare-health/telecare-backend/internal/roles/domain"
)

type stubResolver struct {
	roles map[string]rolesdomain.Role
}

func (s *stubResolver) Resolve(_ context.Context, subjectID string) (rolesdomain.Role, error) {
	if role, ok := s.roles[subjectID]; ok {
		return role, nil
	}
	return rolesdomain.RoleUnknown, nil
}

// setupAppointmentRouter wires the appointment handler onto a test
// router with a stub auth layer and a miniredis-backed cache. The stub
// impersonates whichever subject the request names in X-Test-Subject,
// defaulting to p1, so tests can interleave callers on one router. The
// remote store URL points wherever the test wants, including nowhere.
func setupAppointmentRouter(t *testing.T, remoteURL string, resolver appthttp.RoleResolver) (*gin.Engine, *miniredis.Miniredis) {
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cache := apptservice.NewSyncCache(
		apptservice.NewRemoteClient(remoteURL),
		apptrepo.NewCacheRepository(client),
		apptrepo.NewOutboxRepository(client),
	)

	if resolver == nil {
		resolver = &stubResolver{}
	}
	handler := appthttp.New(cache, resolver)

	router := gin.New()
	group := router.Group("/")
	group.Use(func(c *gin.Context) {
		subject := c.GetHeader("X-Test-Subject")
		if subject == "" {
			subject = "p1"
		}
		c.Set("subject_id", subject)
		c.Set("raw_token", "tok")
		if name := c.GetHeader("X-Test-Name"); name != "" {
			c.Set("display_name", name)
		}
		c.Next()
	})
	handler.Register(group)

	return router, mr
}

func bookBody(t *testing.T) *bytes.Reader {
	payload, err := json.Marshal(map[string]string{
		"doctor_id":   "doc1",
		"doctor_name": "Dr. Sarah Johnson",
		"date":        "2025-07-10",
		"time":        "10:00 AM",
		"type":        "video",
		"reason":      "Follow-up consultation",
	})
	require.NoError(t, err)
	return bytes.NewReader(payload)
}

func TestBookAppointment_RemoteUp(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "srv-1"})
	}))
	defer remote.Close()

	router, _ := setupAppointmentRouter(t, remote.URL, nil)

	req := httptest.NewRequest("POST", "/appointments", bookBody(t))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "srv-1", response["remote_id"])
	assert.NotContains(t, response, "warning")
}

func TestBookAppointment_RemoteDownStillCreated(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	remote.Close() // Connection refused from here on

	router, _ := setupAppointmentRouter(t, remote.URL, nil)

	req := httptest.NewRequest("POST", "/appointments", bookBody(t))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Contains(t, response, "warning")
	assert.NotContains(t, response, "remote_id")

	appointment, ok := response["appointment"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "p1", appointment["patient_id"])
	assert.Equal(t, "confirmed", appointment["status"])

	// The booking is immediately visible on the list endpoint.
	req = httptest.NewRequest("GET", "/appointments", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	appointments, ok := response["appointments"].([]interface{})
	require.True(t, ok)
	require.Len(t, appointments, 1)
}

func TestBookAppointment_IdentityComesFromVerifiedToken(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "srv-1"})
	}))
	defer remote.Close()

	router, _ := setupAppointmentRouter(t, remote.URL, nil)

	book := func(subject, name string) map[string]interface{} {
		req := httptest.NewRequest("POST", "/appointments", bookBody(t))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Subject", subject)
		req.Header.Set("X-Test-Name", name)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		appointment, ok := response["appointment"].(map[string]interface{})
		require.True(t, ok)
		return appointment
	}

	// Two callers book back to back. Each record must carry its own
	// caller's identity, not whoever signed in last.
	alice := book("alice-uid", "Alice Moreno")
	bob := book("bob-uid", "Bob Ferris")

	assert.Equal(t, "alice-uid", alice["patient_id"])
	assert.Equal(t, "Alice Moreno", alice["patient_name"])
	assert.Equal(t, "bob-uid", bob["patient_id"])
	assert.Equal(t, "Bob Ferris", bob["patient_name"])
}

func TestListAppointments_RoleResolvedPerCaller(t *testing.T) {
	rolesSeen := make(chan string, 2)
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rolesSeen <- r.URL.Query().Get("role")
		json.NewEncoder(w).Encode([]map[string]string{})
	}))
	defer remote.Close()

	resolver := &stubResolver{roles: map[string]rolesdomain.Role{
		"doc-uid": rolesdomain.RoleDoctor,
	}}
	router, _ := setupAppointmentRouter(t, remote.URL, resolver)

	list := func(subject string) {
		req := httptest.NewRequest("GET", "/appointments", nil)
		req.Header.Set("X-Test-Subject", subject)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	// First-use fallback hits the remote; the role on the wire is the
	// caller's own resolved role. Subjects without an assignment list
	// as patients.
	list("doc-uid")
	assert.Equal(t, "doctor", <-rolesSeen)

	list("someone-new")
	assert.Equal(t, "patient", <-rolesSeen)
}

func TestBookAppointment_MissingFields(t *testing.T) {
	router, _ := setupAppointmentRouter(t, "http://unused.invalid", nil)

	payload, _ := json.Marshal(map[string]string{"doctor_id": "doc1"})
	req := httptest.NewRequest("POST", "/appointments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateAppointmentStatus_NotFound(t *testing.T) {
	router, _ := setupAppointmentRouter(t, "http://unused.invalid", nil)

	payload, _ := json.Marshal(map[string]string{"status": "cancelled"})
	req := httptest.NewRequest("PATCH", "/appointments/appt-404/status", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestInvalidateLocalAppointments(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "srv-1"})
	}))
	defer remote.Close()

	router, mr := setupAppointmentRouter(t, remote.URL, nil)

	req := httptest.NewRequest("POST", "/appointments", bookBody(t))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.True(t, mr.Exists("appt:list:p1"))

	req = httptest.NewRequest("DELETE", "/appointments/local", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, mr.Exists("appt:list:p1"))
}
