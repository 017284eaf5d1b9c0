package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/loan-risk-service/internal/cache"
	"github.com/Dan9191/loan-risk-service/internal/models"
)

var assessment = &models.RiskAssessment{
	ID:              "7f1c0a34-5d1e-4a0e-9b3e-0c2f5b0d8a11",
	BorrowerID:      "b-1",
	BorrowerName:    "Ravi Kumar",
	RiskScore:       64.5,
	RiskLevel:       "High Risk",
	RiskDescription: "Significant default risk.",
	RiskFactors:     []models.RiskFactor{{Factor: "Missed Payments", Value: "1", Severity: models.SeverityMedium}},
	Recommendations: []string{"Set up automated payment reminders"},
	CreatedAt:       time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
}

func TestRedisCache_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewRedisCache(db, time.Hour)

	data, err := json.Marshal(assessment)
	require.NoError(t, err)
	mock.ExpectSet("risk:assessment:b-1", data, time.Hour).SetVal("OK")

	require.NoError(t, c.Set(context.Background(), assessment))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_SetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewRedisCache(db, time.Minute)

	data, err := json.Marshal(assessment)
	require.NoError(t, err)
	mock.ExpectSet("risk:assessment:b-1", data, time.Minute).SetErr(errors.New("redis down"))

	assert.ErrorContains(t, c.Set(context.Background(), assessment), "redis down")
}

func TestRedisCache_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewRedisCache(db, time.Hour)

	data, err := json.Marshal(assessment)
	require.NoError(t, err)
	mock.ExpectGet("risk:assessment:b-1").SetVal(string(data))

	got, ok := c.Get(context.Background(), "b-1")
	require.True(t, ok)
	assert.Equal(t, assessment, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewRedisCache(db, time.Hour)

	mock.ExpectGet("risk:assessment:b-2").RedisNil()
	_, ok := c.Get(context.Background(), "b-2")
	assert.False(t, ok)

	mock.ExpectGet("risk:assessment:b-3").SetVal("{broken")
	_, ok = c.Get(context.Background(), "b-3")
	assert.False(t, ok)
}

func TestMemoryCache(t *testing.T) {
	c := cache.NewMemoryCache()

	_, ok := c.Get(context.Background(), "b-1")
	assert.False(t, ok)

	require.NoError(t, c.Set(context.Background(), assessment))
	got, ok := c.Get(context.Background(), "b-1")
	require.True(t, ok)
	assert.Equal(t, assessment, got)

	require.NoError(t, c.Delete(context.Background(), "b-1"))
	_, ok = c.Get(context.Background(), "b-1")
	assert.False(t, ok)
}

func TestRedisCache_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewRedisCache(db, time.Hour)

	mock.ExpectDel("risk:assessment:b-1").SetVal(1)
	require.NoError(t, c.Delete(context.Background(), "b-1"))

	mock.ExpectDel("risk:assessment:b-2").SetErr(errors.New("redis down"))
	assert.ErrorContains(t, c.Delete(context.Background(), "b-2"), "redis down")
	assert.NoError(t, mock.ExpectationsWereMet())
}
