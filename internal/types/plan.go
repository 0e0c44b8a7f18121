package types

import "time"

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// PlannedTask is one errand of a day plan resolved to a concrete place.
type PlannedTask struct {
	Task        string     `json:"task"`
	Place       string     `json:"place"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	Category    string     `json:"category"`
	Distance    int        `json:"distance"`
	Rating      float64    `json:"rating"`
	FsqID       string     `json:"fsq_id"`
	Status      TaskStatus `json:"status"`
	AddedAt     time.Time  `json:"added_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type PlanDayRequest struct {
	Tasks  []string `json:"tasks,omitempty"`
	Text   string   `json:"text,omitempty"`
	Origin *LatLng  `json:"origin,omitempty"`
	UserID string   `json:"user_id,omitempty"`
}

type PlanSummary struct {
	DistanceKM     float64 `json:"distance_km"`
	EtaMin         int     `json:"eta_min"`
	TotalTasks     int     `json:"total_tasks"`
	PendingTasks   int     `json:"pending_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
}

// PlanDayResponse carries every task plus the pending stops in route order.
type PlanDayResponse struct {
	Origin  LatLng        `json:"origin"`
	Tasks   []PlannedTask `json:"tasks"`
	Stops   []PlannedTask `json:"stops"`
	Summary PlanSummary   `json:"summary"`
}

type SessionSummary struct {
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	PendingTasks   int     `json:"pending_tasks"`
	CompletionRate float64 `json:"completion_rate"`
}

type CompleteTaskRequest struct {
	Task   string  `json:"task"`
	UserID string  `json:"user_id,omitempty"`
	Origin *LatLng `json:"origin,omitempty"`
}

type CompleteTaskResponse struct {
	Success        bool          `json:"success"`
	Message        string        `json:"message"`
	SessionSummary SessionSummary `json:"session_summary"`
	UpdatedTasks   []PlannedTask `json:"updated_tasks"`
}

type TaskStatusResponse struct {
	SessionSummary SessionSummary `json:"session_summary"`
	Tasks          []PlannedTask  `json:"tasks"`
}

type OptimizeRouteRequest struct {
	Stops []LatLng `json:"stops"`
}

type OptimizeRouteResponse struct {
	DistanceKM float64  `json:"distance_km"`
	EtaMin     int      `json:"eta_min"`
	Stops      []LatLng `json:"stops"`
}
