package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gbf-bot/internal/recruit"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RecruitmentCounters(t *testing.T) {
	r := NewRegistry()

	r.RecruitmentCreated(recruit.BattleTypeFire)
	r.RecruitmentCreated(recruit.BattleTypeFire)
	r.RecruitmentTransitioned(recruit.StatusComplete)
	r.ParticipantChangeHandled("updated")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.RecruitmentsCreatedTotal.WithLabelValues("火属性")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RecruitmentTransitions.WithLabelValues("complete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ParticipantEventsTotal.WithLabelValues("updated")))
}

func TestRegistry_ObserveEvent(t *testing.T) {
	r := NewRegistry()

	err := &recruit.PlatformError{Op: "edit recruitment", Err: errors.New("429")}
	r.ObserveEvent("reaction_add", time.Now(), err)
	r.ObserveEvent("reaction_add", time.Now(), errors.New("other"))
	r.ObserveEvent("reaction_add", time.Now(), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.PlatformErrorsTotal.WithLabelValues("edit recruitment")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.EventDuration))
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.CacheHit()
	r.CacheMiss()
	r.ScheduledStarts(3)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `gbfbot_quest_cache_requests_total{result="hit"} 1`))
	assert.True(t, strings.Contains(body, "gbfbot_scheduled_starts_total 3"))
}
