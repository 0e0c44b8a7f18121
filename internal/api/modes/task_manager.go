package modes

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/dark-devil9/UrNav/internal/geo"
	"github.com/dark-devil9/UrNav/internal/types"
)

const defaultSessionTTL = 24 * time.Hour

type taskSession struct {
	UserID    string
	Origin    types.LatLng
	Tasks     []types.PlannedTask
	CreatedAt time.Time
}

// TaskManager keeps day-plan sessions in memory, keyed by user and rounded
// origin. A session expires after the TTL passes without being touched.
type TaskManager struct {
	mu       sync.Mutex
	sessions *cache.Cache
	ttl      time.Duration
	now      func() time.Time
}

func NewTaskManager(ttl time.Duration) *TaskManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &TaskManager{
		sessions: cache.New(ttl, ttl/2),
		ttl:      ttl,
		now:      time.Now,
	}
}

// SessionKey is user_lat_lon with coordinates rounded to four decimals.
func SessionKey(userID string, origin types.LatLng) string {
	return fmt.Sprintf("%s_%v_%v", userID, geo.Round4(origin.Lat), geo.Round4(origin.Lng))
}

// load returns the session or a fresh one; callers hold mu.
func (m *TaskManager) load(userID string, origin types.LatLng) *taskSession {
	if v, ok := m.sessions.Get(SessionKey(userID, origin)); ok {
		return v.(*taskSession)
	}
	return &taskSession{UserID: userID, Origin: origin, CreatedAt: m.now()}
}

func (m *TaskManager) store(s *taskSession) {
	m.sessions.Set(SessionKey(s.UserID, s.Origin), s, m.ttl)
}

// AddTasks stamps every task pending and appends the ones whose name is not
// already in the session. The stamped input is returned.
func (m *TaskManager) AddTasks(userID string, origin types.LatLng, tasks []types.PlannedTask) []types.PlannedTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(userID, origin)
	seen := make(map[string]struct{}, len(s.Tasks))
	for _, t := range s.Tasks {
		seen[t.Task] = struct{}{}
	}

	now := m.now()
	stamped := make([]types.PlannedTask, len(tasks))
	for i, t := range tasks {
		t.Status = types.TaskPending
		t.AddedAt = now
		t.CompletedAt = nil
		stamped[i] = t
		if _, dup := seen[t.Task]; !dup {
			s.Tasks = append(s.Tasks, t)
			seen[t.Task] = struct{}{}
		}
	}
	m.store(s)
	return stamped
}

// CompleteTask marks the named task completed. ok is false when either the
// session or the task does not exist.
func (m *TaskManager) CompleteTask(userID string, origin types.LatLng, taskName string) (tasks []types.PlannedTask, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, found := m.sessions.Get(SessionKey(userID, origin))
	if !found {
		return nil, false
	}
	s := v.(*taskSession)
	for i := range s.Tasks {
		if s.Tasks[i].Task == taskName {
			now := m.now()
			s.Tasks[i].Status = types.TaskCompleted
			s.Tasks[i].CompletedAt = &now
			m.store(s)
			return cloneTasks(s.Tasks), true
		}
	}
	return nil, false
}

// Tasks returns every task in the session, pending and completed.
func (m *TaskManager) Tasks(userID string, origin types.LatLng) []types.PlannedTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneTasks(m.load(userID, origin).Tasks)
}

func pendingTasks(tasks []types.PlannedTask) []types.PlannedTask {
	var pending []types.PlannedTask
	for _, t := range tasks {
		if t.Status == types.TaskPending {
			pending = append(pending, t)
		}
	}
	return pending
}

func summarize(tasks []types.PlannedTask) types.SessionSummary {
	sum := types.SessionSummary{TotalTasks: len(tasks)}
	for _, t := range tasks {
		if t.Status == types.TaskCompleted {
			sum.CompletedTasks++
		}
	}
	sum.PendingTasks = sum.TotalTasks - sum.CompletedTasks
	if sum.TotalTasks > 0 {
		sum.CompletionRate = float64(sum.CompletedTasks) / float64(sum.TotalTasks) * 100
	}
	return sum
}

func cloneTasks(in []types.PlannedTask) []types.PlannedTask {
	out := make([]types.PlannedTask, len(in))
	copy(out, in)
	return out
}
