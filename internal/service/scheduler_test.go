package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/loan-risk-service/internal/service"
)

func TestScheduler_InvalidSpec(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := service.NewScheduler(newService(&fixedModel{score: 10}, newMemStore()), logger)

	err := s.Start("every now and then")
	assert.ErrorContains(t, err, "invalid rescore schedule")
}

func TestScheduler_RescoresStoredBorrowers(t *testing.T) {
	store := newMemStore()
	svc := newService(&fixedModel{score: 45}, store)
	b := typicalBorrower()
	require.NoError(t, svc.CreateBorrower(context.Background(), 1, b))

	logger, _ := test.NewNullLogger()
	s := service.NewScheduler(svc, logger)
	require.NoError(t, s.Start("@every 1s"))
	defer s.Stop()

	require.Eventually(t, func() bool {
		_, err := store.LatestAssessment(context.Background(), b.ID)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
}
