package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	c := HTTPRequestsTotal.WithLabelValues("GET", "/v1/films/:id", "200")
	before := testutil.ToFloat64(c)

	RecordHTTPRequest("GET", "/v1/films/:id", 200, 15*time.Millisecond)

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("request counter delta = %v, want 1", got)
	}
}

func TestRecordLike(t *testing.T) {
	tests := []struct {
		name  string
		added bool
		label string
	}{
		{name: "add", added: true, label: "add"},
		{name: "remove", added: false, label: "remove"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := LikesTotal.WithLabelValues(tt.label)
			before := testutil.ToFloat64(c)
			RecordLike(tt.added)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("%s delta = %v, want 1", tt.label, got)
			}
		})
	}
}

func TestRecordFriendshipTransition(t *testing.T) {
	c := FriendshipTransitionsTotal.WithLabelValues("CONFIRMED")
	before := testutil.ToFloat64(c)
	RecordFriendshipTransition("CONFIRMED")
	RecordFriendshipTransition("CONFIRMED")
	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("delta = %v, want 2", got)
	}
}

func TestRecordEvents(t *testing.T) {
	pub := EventsPublishedTotal.WithLabelValues("LIKE_ADDED", "ok")
	before := testutil.ToFloat64(pub)
	RecordEventPublished("LIKE_ADDED", "ok")
	if got := testutil.ToFloat64(pub) - before; got != 1 {
		t.Errorf("published delta = %v, want 1", got)
	}

	consumedBefore := testutil.ToFloat64(EventsConsumedTotal)
	RecordEventConsumed()
	if got := testutil.ToFloat64(EventsConsumedTotal) - consumedBefore; got != 1 {
		t.Errorf("consumed delta = %v, want 1", got)
	}
}

func TestMetricsLint(t *testing.T) {
	RecordRateLimited("local")
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer,
		"filmorate_http_requests_total",
		"filmorate_likes_total",
		"filmorate_rate_limited_total",
	)
	if err != nil {
		t.Fatalf("GatherAndLint error = %v", err)
	}
	for _, p := range problems {
		t.Errorf("metric %s: %s", p.Metric, p.Text)
	}
}
