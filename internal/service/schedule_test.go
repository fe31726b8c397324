package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"classbook/internal/cache"
	"classbook/internal/models"
	"classbook/internal/repository"
	"classbook/internal/transport"
)

type countingServer struct {
	mu     sync.Mutex
	counts map[string]int
	srv    *httptest.Server
}

func newCountingServer(t *testing.T, routes map[string]http.HandlerFunc) *countingServer {
	t.Helper()
	cs := &countingServer{counts: make(map[string]int)}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		cs.mu.Lock()
		cs.counts[key]++
		cs.mu.Unlock()

		if handler, ok := routes[key]; ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	}))
	t.Cleanup(cs.srv.Close)
	return cs
}

func (cs *countingServer) count(key string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.counts[key]
}

func (cs *countingServer) total() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	sum := 0
	for _, n := range cs.counts {
		sum += n
	}
	return sum
}

func newScheduleService(t *testing.T, cs *countingServer) *ScheduleService {
	t.Helper()
	client := transport.NewClient(transport.Options{BaseURL: cs.srv.URL}, zerolog.Nop(), nil)
	repo := repository.NewScheduleRepository(client)
	return NewScheduleService(
		repo,
		cache.NewTTL(),
		newValidation(),
		RetryConfig{Attempts: 3, BaseDelay: time.Millisecond},
		nil,
		zerolog.Nop(),
	)
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestCreateScheduleRejectsMissingFields(t *testing.T) {
	cs := newCountingServer(t, nil)
	s := newScheduleService(t, cs)

	resp := s.CreateSchedule(context.Background(), models.CreateScheduleData{Title: "Math"}, "tok")
	if resp.Success {
		t.Fatal("expected failure")
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("statusCode = %d, want 400", resp.StatusCode)
	}
	if cs.total() != 0 {
		t.Fatalf("validation failure reached the network, %d calls", cs.total())
	}
}

func TestCreateScheduleRejectsPastDate(t *testing.T) {
	cs := newCountingServer(t, nil)
	s := newScheduleService(t, cs)

	resp := s.CreateSchedule(context.Background(), models.CreateScheduleData{
		Title:  "Math",
		Date:   "2020-01-01",
		Time:   "10:00",
		RoomID: 1,
		UserID: 2,
	}, "tok")
	if resp.Success || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("resp = %+v", resp)
	}
	if cs.total() != 0 {
		t.Fatal("past date reached the network")
	}
}

func TestCreateScheduleConflict(t *testing.T) {
	cs := newCountingServer(t, map[string]http.HandlerFunc{
		"GET /schedules/check-availability": jsonHandler(`{"available":false,"message":"room taken"}`),
	})
	s := newScheduleService(t, cs)

	resp := s.CreateSchedule(context.Background(), models.CreateScheduleData{
		Title:  "Math",
		Date:   futureDate(t),
		Time:   "10:00",
		RoomID: 1,
		UserID: 2,
	}, "tok")
	if resp.Success {
		t.Fatal("expected conflict")
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("statusCode = %d, want 409", resp.StatusCode)
	}
	if resp.Error != "room taken" {
		t.Fatalf("error = %q", resp.Error)
	}
	if cs.count("POST /schedules") != 0 {
		t.Fatal("conflicting slot still posted")
	}
}

func TestCreateScheduleInvalidatesDayCache(t *testing.T) {
	date := futureDate(t)
	cs := newCountingServer(t, map[string]http.HandlerFunc{
		"GET /schedules/date/" + date:       jsonHandler(`[{"id":1,"tema":"Math"}]`),
		"GET /schedules/check-availability": jsonHandler(`{"available":true}`),
		"POST /schedules":                   jsonHandler(`{"id":2,"tema":"Physics"}`),
	})
	s := newScheduleService(t, cs)
	ctx := context.Background()

	if resp := s.GetSchedulesByDate(ctx, date, "tok"); !resp.Success {
		t.Fatalf("first read failed: %+v", resp)
	}
	if resp := s.GetSchedulesByDate(ctx, date, "tok"); !resp.Success {
		t.Fatalf("cached read failed: %+v", resp)
	}
	if got := cs.count("GET /schedules/date/" + date); got != 1 {
		t.Fatalf("day endpoint hit %d times before mutation, want 1", got)
	}

	create := s.CreateSchedule(ctx, models.CreateScheduleData{
		Title:  "Physics",
		Date:   date,
		Time:   "10:00",
		RoomID: 1,
		UserID: 2,
	}, "tok")
	if !create.Success {
		t.Fatalf("create failed: %+v", create)
	}

	if resp := s.GetSchedulesByDate(ctx, date, "tok"); !resp.Success {
		t.Fatalf("read after create failed: %+v", resp)
	}
	if got := cs.count("GET /schedules/date/" + date); got != 2 {
		t.Fatalf("day endpoint hit %d times, want 2 (cache invalidated)", got)
	}
}

func TestGetSchedulesByMonthCachesPerUser(t *testing.T) {
	cs := newCountingServer(t, map[string]http.HandlerFunc{
		"GET /schedules/month/5/user/1": jsonHandler(`[{"id":1}]`),
		"GET /schedules/month/5/user/2": jsonHandler(`[{"id":2}]`),
	})
	s := newScheduleService(t, cs)
	ctx := context.Background()

	s.GetSchedulesByMonth(ctx, "5", 1, "tok")
	s.GetSchedulesByMonth(ctx, "5", 1, "tok")
	s.GetSchedulesByMonth(ctx, "5", 2, "tok")

	if got := cs.count("GET /schedules/month/5/user/1"); got != 1 {
		t.Fatalf("user 1 endpoint hit %d times, want 1", got)
	}
	if got := cs.count("GET /schedules/month/5/user/2"); got != 1 {
		t.Fatalf("user 2 endpoint hit %d times, want 1", got)
	}
}

func TestGetSchedulesByMonthRejectsBadMonth(t *testing.T) {
	cs := newCountingServer(t, nil)
	s := newScheduleService(t, cs)

	for _, bad := range []string{"", "0", "13", "abc"} {
		resp := s.GetSchedulesByMonth(context.Background(), bad, 1, "tok")
		if resp.Success || resp.StatusCode != http.StatusBadRequest {
			t.Errorf("month %q: resp = %+v", bad, resp)
		}
	}
	if cs.total() != 0 {
		t.Fatal("invalid month reached the network")
	}
}

func TestGetSchedulesByDateRetriesServerErrors(t *testing.T) {
	date := futureDate(t)
	failures := 2
	var mu sync.Mutex
	cs := newCountingServer(t, map[string]http.HandlerFunc{
		"GET /schedules/date/" + date: func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			defer mu.Unlock()
			if failures > 0 {
				failures--
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"message":"boom"}`))
				return
			}
			w.Write([]byte(`[{"id":1}]`))
		},
	})
	s := newScheduleService(t, cs)

	resp := s.GetSchedulesByDate(context.Background(), date, "tok")
	if !resp.Success {
		t.Fatalf("resp = %+v", resp)
	}
	if got := cs.count("GET /schedules/date/" + date); got != 3 {
		t.Fatalf("endpoint hit %d times, want 3", got)
	}
}

func TestCanEditAndCanCancel(t *testing.T) {
	cs := newCountingServer(t, nil)
	s := newScheduleService(t, cs)

	now := time.Date(2030, 5, 10, 9, 0, 0, 0, time.Local)
	s.now = func() time.Time { return now }

	tests := []struct {
		name      string
		timeStart string
		canEdit   bool
		canCancel bool
	}{
		{"two hours ahead", "11:00", true, true},
		{"61 minutes ahead", "10:01", true, true},
		{"exactly one hour", "10:00", false, true},
		{"45 minutes ahead", "09:45", false, true},
		{"exactly 30 minutes", "09:30", false, false},
		{"already started", "08:00", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := &models.Schedule{Date: "2030-05-10", TimeStart: tt.timeStart}
			if got := s.CanEdit(schedule); got != tt.canEdit {
				t.Errorf("CanEdit = %v, want %v", got, tt.canEdit)
			}
			if got := s.CanCancel(schedule); got != tt.canCancel {
				t.Errorf("CanCancel = %v, want %v", got, tt.canCancel)
			}
		})
	}

	if s.CanEdit(&models.Schedule{Date: "", TimeStart: ""}) {
		t.Error("unparseable start should not be editable")
	}
}

func TestCancelScheduleClearsCaches(t *testing.T) {
	date := futureDate(t)
	cs := newCountingServer(t, map[string]http.HandlerFunc{
		"GET /schedules/date/" + date: jsonHandler(`[{"id":1}]`),
		"PATCH /schedules/1/cancel":   jsonHandler(`{}`),
	})
	s := newScheduleService(t, cs)
	ctx := context.Background()

	s.GetSchedulesByDate(ctx, date, "tok")
	if resp := s.CancelSchedule(ctx, 1, "sick", "tok"); !resp.Success {
		t.Fatalf("cancel failed: %+v", resp)
	}
	s.GetSchedulesByDate(ctx, date, "tok")

	if got := cs.count("GET /schedules/date/" + date); got != 2 {
		t.Fatalf("day endpoint hit %d times, want 2", got)
	}
}
