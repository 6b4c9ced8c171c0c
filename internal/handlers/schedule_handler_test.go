package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tawidapp/tawid-backend/internal/database"
	"github.com/tawidapp/tawid-backend/internal/middleware"
	"github.com/tawidapp/tawid-backend/internal/models"
)

// fakeFeed serves a fixed snapshot and lets tests drive subscription
// callbacks by hand.
type fakeFeed struct {
	records []models.ScheduleRecord

	mu       sync.Mutex
	onChange func([]models.ScheduleRecord)
	onError  func(error)
}

func (f *fakeFeed) Records() []models.ScheduleRecord {
	return f.records
}

func (f *fakeFeed) Subscribe(onChange func([]models.ScheduleRecord), onError func(error)) func() {
	f.mu.Lock()
	f.onChange = onChange
	f.onError = onError
	f.mu.Unlock()
	onChange(f.records)
	return func() {}
}

// closeNotifyRecorder adds the http.CloseNotifier implementation that
// gin's Context.Stream requires but httptest.ResponseRecorder lacks.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func (f *fakeFeed) failWatch(err error) {
	f.mu.Lock()
	onError := f.onError
	f.mu.Unlock()
	if onError != nil {
		onError(err)
	}
}

func setupScheduleTestHandler(t *testing.T, feed ScheduleFeed) (*ScheduleHandler, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &database.PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}
	repo := database.NewScheduleRepository(db)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return NewScheduleHandler(repo, feed, logger), mock
}

func feedRecords() []models.ScheduleRecord {
	return []models.ScheduleRecord{
		{
			ID:             "a",
			BoatName:       "MV Syvel 108",
			From:           "Matnog",
			To:             "Allen",
			Price:          250,
			Time:           "9:00 AM",
			BoatType:       models.BoatTypeFastcraft,
			Status:         models.StatusAvailable,
			WeeklySchedule: models.WeekdayArray{"Mon"},
		},
		{
			ID:             "b",
			BoatName:       "MV Penafrancia",
			From:           "Allen",
			To:             "Matnog",
			Price:          480,
			Time:           "6:30 AM",
			BoatType:       models.BoatTypeRORO,
			Status:         models.StatusAvailable,
			WeeklySchedule: models.WeekdayArray{"Tue"},
		},
	}
}

func setupScheduleRouter(handler *ScheduleHandler, userCtx *middleware.UserContext) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	inject := func(c *gin.Context) {
		if userCtx != nil {
			c.Set(middleware.UserContextKey, *userCtx)
		}
		c.Next()
	}

	router.GET("/schedules", handler.GetSchedules)
	router.GET("/schedules/stream", handler.StreamSchedules)
	router.GET("/schedules/:id", handler.GetScheduleByID)
	router.POST("/schedules", inject, handler.CreateSchedule)
	router.PUT("/schedules/:id", inject, handler.UpdateSchedule)
	router.DELETE("/schedules/:id", inject, handler.DeleteSchedule)
	return router
}

func TestGetSchedules(t *testing.T) {
	feed := &fakeFeed{records: feedRecords()}
	handler, _ := setupScheduleTestHandler(t, feed)
	userCtx := &middleware.UserContext{UserID: uuid.New(), Role: "Admin"}
	router := setupScheduleRouter(handler, userCtx)

	t.Run("No Filters Returns Snapshot", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/schedules", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var records []models.ScheduleRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		require.Len(t, records, 2)
		assert.Equal(t, "a", records[0].ID)
	})

	t.Run("Search Filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/schedules?search=syvel", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var records []models.ScheduleRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "a", records[0].ID)
	})

	t.Run("Boat Type Filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/schedules?boat_type=RORO", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var records []models.ScheduleRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "b", records[0].ID)
	})

	t.Run("Price Bound Filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/schedules?price_max=300", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var records []models.ScheduleRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "a", records[0].ID)
	})

	t.Run("Sort By Departure", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/schedules?sort=departure", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var records []models.ScheduleRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		require.Len(t, records, 2)
		assert.Equal(t, "b", records[0].ID)
	})

	t.Run("Group By Boat Type", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/schedules?group=boat_type", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var grouped map[string][]models.ScheduleRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grouped))
		assert.Len(t, grouped["fastcraft"], 1)
		assert.Len(t, grouped["roro"], 1)
	})
}

func TestStreamSchedules(t *testing.T) {
	feed := &fakeFeed{records: feedRecords()}
	handler, _ := setupScheduleTestHandler(t, feed)
	router := setupScheduleRouter(handler, nil)

	// The initial subscription delivery produces one snapshot event; the
	// injected watch failure ends the stream.
	go func() {
		time.Sleep(50 * time.Millisecond)
		feed.failWatch(assert.AnError)
	}()

	w := newCloseNotifyRecorder()
	req := httptest.NewRequest("GET", "/schedules/stream", nil)
	router.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "event:snapshot")
	assert.Contains(t, body, "MV Syvel 108")
	assert.Contains(t, body, "event:error")
}

func TestCreateScheduleHandler(t *testing.T) {
	userCtx := &middleware.UserContext{UserID: uuid.New(), Role: "Admin"}

	t.Run("Success", func(t *testing.T) {
		feed := &fakeFeed{}
		handler, mock := setupScheduleTestHandler(t, feed)
		router := setupScheduleRouter(handler, userCtx)

		now := time.Now()
		mock.ExpectQuery(`INSERT INTO schedules`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
				AddRow(now, now))

		body, _ := json.Marshal(map[string]interface{}{
			"boatName": "MV Syvel 108",
			"from":     "Matnog",
			"to":       "Allen",
			"price":    "250",
			"capacity": "120",
			"time":     "6:30 AM",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/schedules", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var record models.ScheduleRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, userCtx.UserID.String(), record.UserID)
		assert.Equal(t, models.BoatTypeFastcraft, record.BoatType)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Fields Rejected", func(t *testing.T) {
		feed := &fakeFeed{}
		handler, mock := setupScheduleTestHandler(t, feed)
		router := setupScheduleRouter(handler, userCtx)

		body, _ := json.Marshal(map[string]interface{}{
			"from": "Matnog",
			"to":   "Allen",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/schedules", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "missing_fields")
		assert.Contains(t, w.Body.String(), "boatName")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No User Context", func(t *testing.T) {
		feed := &fakeFeed{}
		handler, _ := setupScheduleTestHandler(t, feed)
		router := setupScheduleRouter(handler, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/schedules", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUpdateScheduleHandler(t *testing.T) {
	userCtx := &middleware.UserContext{UserID: uuid.New(), Role: "Admin"}

	validBody, _ := json.Marshal(map[string]interface{}{
		"boatName": "MV Syvel 108",
		"from":     "Matnog",
		"to":       "Allen",
		"price":    "300",
		"capacity": "120",
		"time":     "7:00 AM",
	})

	t.Run("Success", func(t *testing.T) {
		feed := &fakeFeed{}
		handler, mock := setupScheduleTestHandler(t, feed)
		router := setupScheduleRouter(handler, userCtx)

		mock.ExpectExec(`UPDATE schedules`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/schedules/schedule-1", bytes.NewReader(validBody))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		feed := &fakeFeed{}
		handler, mock := setupScheduleTestHandler(t, feed)
		router := setupScheduleRouter(handler, userCtx)

		mock.ExpectExec(`UPDATE schedules`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/schedules/missing", bytes.NewReader(validBody))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteScheduleHandler(t *testing.T) {
	userCtx := &middleware.UserContext{UserID: uuid.New(), Role: "Admin"}

	t.Run("Delete Of Missing Schedule Still Succeeds", func(t *testing.T) {
		feed := &fakeFeed{}
		handler, mock := setupScheduleTestHandler(t, feed)
		router := setupScheduleRouter(handler, userCtx)

		mock.ExpectExec(`DELETE FROM schedules`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/schedules/gone", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
