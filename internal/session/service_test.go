package session

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/internal/session/entity"
	taskentity "github.com/pomorix/service-core-go/internal/task/entity"
)

const testUser = "user-1"

func newTestService(store *memStore, clock clockwork.Clock) (*Service, *stubStreaks, *stubBadges) {
	streaks := &stubStreaks{}
	badges := &stubBadges{}
	svc := NewService(store, &stubSettings{}, streaks, badges, clock, zap.NewNop().Sugar())
	return svc, streaks, badges
}

func activeTask(id string) *taskentity.Task {
	return &taskentity.Task{ID: id, UserID: testUser, Title: "write report", IsActive: true}
}

func TestStartFocus(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	store := &memStore{tasks: []*taskentity.Task{activeTask("t1")}}
	svc, _, _ := newTestService(store, clock)

	snap, err := svc.Start(context.Background(), testUser, entity.TypeFocus)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.State != entity.StateFocus {
		t.Errorf("state = %s, want FOCUS", snap.State)
	}
	if snap.TaskID != "t1" {
		t.Errorf("task id = %s, want t1", snap.TaskID)
	}
	if snap.DurationSeconds != 25*60 {
		t.Errorf("duration = %d, want 1500", snap.DurationSeconds)
	}
	if snap.ElapsedSeconds != 0 || snap.RemainingSeconds != 1500 {
		t.Errorf("elapsed/remaining = %d/%d, want 0/1500", snap.ElapsedSeconds, snap.RemainingSeconds)
	}
}

func TestStartRejectsUnknownType(t *testing.T) {
	svc, _, _ := newTestService(&memStore{}, clockwork.NewFakeClock())
	if _, err := svc.Start(context.Background(), testUser, entity.Type("NAP")); err != ErrInvalidType {
		t.Fatalf("err = %v, want ErrInvalidType", err)
	}
}

func TestStartFocusRequiresActiveTask(t *testing.T) {
	store := &memStore{tasks: []*taskentity.Task{
		{ID: "t1", UserID: testUser, Title: "inactive"},
	}}
	svc, _, _ := newTestService(store, clockwork.NewFakeClock())
	if _, err := svc.Start(context.Background(), testUser, entity.TypeFocus); err != ErrNoActiveTask {
		t.Fatalf("err = %v, want ErrNoActiveTask", err)
	}
}

func TestStartBreakFallsBackToLatestTask(t *testing.T) {
	store := &memStore{tasks: []*taskentity.Task{
		{ID: "t1", UserID: testUser, Title: "old"},
		{ID: "t2", UserID: testUser, Title: "newer"},
	}}
	svc, _, _ := newTestService(store, clockwork.NewFakeClock())

	snap, err := svc.Start(context.Background(), testUser, entity.TypeShortBreak)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.TaskID != "t2" {
		t.Errorf("task id = %s, want latest t2", snap.TaskID)
	}
	if snap.State != entity.StateBreak {
		t.Errorf("state = %s, want BREAK", snap.State)
	}
	if snap.DurationSeconds != 5*60 {
		t.Errorf("duration = %d, want 300", snap.DurationSeconds)
	}
}

func TestStartBreakWithoutAnyTask(t *testing.T) {
	svc, _, _ := newTestService(&memStore{}, clockwork.NewFakeClock())
	if _, err := svc.Start(context.Background(), testUser, entity.TypeLongBreak); err != ErrNoTasksFound {
		t.Fatalf("err = %v, want ErrNoTasksFound", err)
	}
}

func TestStartAbortsPriorSession(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	store := &memStore{tasks: []*taskentity.Task{activeTask("t1")}}
	svc, _, _ := newTestService(store, clock)
	ctx := context.Background()

	if _, err := svc.Start(ctx, testUser, entity.TypeFocus); err != nil {
		t.Fatalf("first start: %v", err)
	}
	clock.Advance(10 * time.Minute)
	if err := svc.Pause(ctx, testUser); err != nil {
		t.Fatalf("pause: %v", err)
	}
	clock.Advance(2 * time.Minute)

	if _, err := svc.Start(ctx, testUser, entity.TypeShortBreak); err != nil {
		t.Fatalf("second start: %v", err)
	}

	prior := store.sessions[0]
	if prior.State != entity.StateAborted {
		t.Errorf("prior state = %s, want ABORTED", prior.State)
	}
	if prior.EndedAt == nil {
		t.Fatal("prior EndedAt not set")
	}
	if prior.PausedAt != nil {
		t.Error("prior PausedAt not folded")
	}
	if prior.TotalPauseSeconds != 120 {
		t.Errorf("prior pause seconds = %d, want 120", prior.TotalPauseSeconds)
	}
	if cur, _ := store.ActiveSession(ctx, testUser); cur == nil || cur.SessionType != entity.TypeShortBreak {
		t.Error("new break session not active")
	}
}

func TestPauseResume(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	store := &memStore{tasks: []*taskentity.Task{activeTask("t1")}}
	svc, _, _ := newTestService(store, clock)
	ctx := context.Background()

	if err := svc.Pause(ctx, testUser); err != ErrNoActiveSession {
		t.Fatalf("pause without session: err = %v, want ErrNoActiveSession", err)
	}

	if _, err := svc.Start(ctx, testUser, entity.TypeFocus); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Resume(ctx, testUser); err != ErrNotPaused {
		t.Fatalf("resume while running: err = %v, want ErrNotPaused", err)
	}

	clock.Advance(5 * time.Minute)
	if err := svc.Pause(ctx, testUser); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := svc.Pause(ctx, testUser); err != ErrAlreadyPaused {
		t.Fatalf("double pause: err = %v, want ErrAlreadyPaused", err)
	}

	clock.Advance(3 * time.Minute)
	if err := svc.Resume(ctx, testUser); err != nil {
		t.Fatalf("resume: %v", err)
	}

	sess := store.sessions[0]
	if sess.PausedAt != nil {
		t.Error("PausedAt still set after resume")
	}
	if sess.TotalPauseSeconds != 180 {
		t.Errorf("pause seconds = %d, want 180", sess.TotalPauseSeconds)
	}
}

func TestCurrentSnapshot(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	store := &memStore{tasks: []*taskentity.Task{activeTask("t1")}}
	svc, _, _ := newTestService(store, clock)
	ctx := context.Background()

	snap, err := svc.Current(ctx, testUser)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot without a session")
	}

	if _, err := svc.Start(ctx, testUser, entity.TypeFocus); err != nil {
		t.Fatalf("start: %v", err)
	}

	clock.Advance(10 * time.Minute)
	snap, _ = svc.Current(ctx, testUser)
	if snap.ElapsedSeconds != 600 || snap.RemainingSeconds != 900 {
		t.Errorf("elapsed/remaining = %d/%d, want 600/900", snap.ElapsedSeconds, snap.RemainingSeconds)
	}

	// timer freezes while paused
	if err := svc.Pause(ctx, testUser); err != nil {
		t.Fatalf("pause: %v", err)
	}
	clock.Advance(30 * time.Minute)
	snap, _ = svc.Current(ctx, testUser)
	if snap.ElapsedSeconds != 600 {
		t.Errorf("elapsed while paused = %d, want 600", snap.ElapsedSeconds)
	}
	if !snap.IsPaused {
		t.Error("IsPaused = false, want true")
	}

	// overrun clamps remaining at zero
	if err := svc.Resume(ctx, testUser); err != nil {
		t.Fatalf("resume: %v", err)
	}
	clock.Advance(2 * time.Hour)
	snap, _ = svc.Current(ctx, testUser)
	if snap.RemainingSeconds != 0 {
		t.Errorf("remaining after overrun = %d, want 0", snap.RemainingSeconds)
	}
}

func TestCompleteFocusAdvancesTask(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	est := 2
	store := &memStore{tasks: []*taskentity.Task{
		{ID: "t1", UserID: testUser, Title: "first", IsActive: true, EstimatedPomodoros: &est, CompletedPomodoros: 1},
		{ID: "t2", UserID: testUser, Title: "second"},
	}}
	svc, streaks, badges := newTestService(store, clock)
	ctx := context.Background()

	if _, err := svc.Start(ctx, testUser, entity.TypeFocus); err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.Advance(25 * time.Minute)
	if err := svc.Complete(ctx, testUser); err != nil {
		t.Fatalf("complete: %v", err)
	}

	first := store.tasks[0]
	if first.CompletedPomodoros != 2 {
		t.Errorf("completed pomodoros = %d, want 2", first.CompletedPomodoros)
	}
	if !first.IsCompleted || first.IsActive {
		t.Errorf("task state = completed:%v active:%v, want completed and inactive", first.IsCompleted, first.IsActive)
	}
	if !store.tasks[1].IsActive {
		t.Error("oldest incomplete task not reactivated")
	}

	sess := store.sessions[0]
	if sess.State != entity.StateCompleted || sess.EndedAt == nil {
		t.Errorf("session not completed: state=%s", sess.State)
	}
	if len(streaks.calls) != 1 {
		t.Errorf("streak hook calls = %d, want 1", len(streaks.calls))
	}
	if badges.calls != 1 {
		t.Errorf("badge hook calls = %d, want 1", badges.calls)
	}
}

func TestCompleteBreakSkipsHooks(t *testing.T) {
	store := &memStore{tasks: []*taskentity.Task{activeTask("t1")}}
	svc, streaks, badges := newTestService(store, clockwork.NewFakeClock())
	ctx := context.Background()

	if _, err := svc.Start(ctx, testUser, entity.TypeShortBreak); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Complete(ctx, testUser); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(streaks.calls) != 0 || badges.calls != 0 {
		t.Error("hooks ran for a break session")
	}
	if store.tasks[0].CompletedPomodoros != 0 {
		t.Error("break completion credited the task")
	}
}

func TestCompleteSurvivesHookFailure(t *testing.T) {
	store := &memStore{tasks: []*taskentity.Task{activeTask("t1")}}
	svc, streaks, _ := newTestService(store, clockwork.NewFakeClock())
	streaks.err = context.DeadlineExceeded
	ctx := context.Background()

	if _, err := svc.Start(ctx, testUser, entity.TypeFocus); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Complete(ctx, testUser); err != nil {
		t.Fatalf("complete returned hook error: %v", err)
	}
	if store.sessions[0].State != entity.StateCompleted {
		t.Error("session not completed despite hook failure")
	}
}

func TestCompleteWithoutSession(t *testing.T) {
	svc, _, _ := newTestService(&memStore{}, clockwork.NewFakeClock())
	if err := svc.Complete(context.Background(), testUser); err != ErrNoActiveSession {
		t.Fatalf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestAbort(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	store := &memStore{tasks: []*taskentity.Task{activeTask("t1")}}
	svc, streaks, badges := newTestService(store, clock)
	ctx := context.Background()

	if err := svc.Abort(ctx, testUser); err != ErrNoActiveSession {
		t.Fatalf("abort without session: err = %v, want ErrNoActiveSession", err)
	}

	if _, err := svc.Start(ctx, testUser, entity.TypeFocus); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Abort(ctx, testUser); err != nil {
		t.Fatalf("abort: %v", err)
	}

	sess := store.sessions[0]
	if sess.State != entity.StateAborted || sess.EndedAt == nil {
		t.Errorf("session not aborted: state=%s", sess.State)
	}
	if store.tasks[0].CompletedPomodoros != 0 {
		t.Error("abort credited the task")
	}
	if len(streaks.calls) != 0 || badges.calls != 0 {
		t.Error("hooks ran on abort")
	}
}
