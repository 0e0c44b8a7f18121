package modes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dark-devil9/UrNav/internal/api/foursquare"
	"github.com/dark-devil9/UrNav/internal/api/foursquare/foursquaretest"
	"github.com/dark-devil9/UrNav/internal/types"
)

type MockPlanRecorder struct {
	mock.Mock
}

func (m *MockPlanRecorder) SavePlan(ctx context.Context, userID uuid.UUID, stops []types.PlannedTask) error {
	return m.Called(ctx, userID, stops).Error(0)
}

func newTestService(provider foursquare.Provider, recorder PlanRecorder) *ModesServiceImpl {
	return NewModesService(provider, offlineAssistant(), NewTaskManager(time.Hour), recorder, types.LatLng{}, discardLogger())
}

func TestPlanDay_ParsesTextAndSummarises(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	svc := newTestService(provider, nil)

	resp, err := svc.PlanDay(context.Background(), types.PlanDayRequest{Text: "grab a coffee and then pick up flowers"}, "")
	require.NoError(t, err)

	assert.Equal(t, jaipur, resp.Origin)
	assert.Equal(t, []string{"Get coffee", "Buy bouquets"}, taskNames(resp.Tasks))
	assert.Len(t, resp.Stops, 2)
	assert.Equal(t, 2, resp.Summary.TotalTasks)
	assert.Equal(t, 2, resp.Summary.PendingTasks)
	assert.Zero(t, resp.Summary.CompletedTasks)
	assert.Greater(t, resp.Summary.DistanceKM, 0.0)

	status := svc.TaskStatus(context.Background(), "", jaipur)
	assert.Equal(t, 2, status.SessionSummary.TotalTasks)
}

func TestPlanDay_DistanceAndETA(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	// roughly 1.1 km north of the origin
	provider.On("Search", mock.Anything, mock.Anything).Return(&types.SearchResponse{Results: []types.Place{
		place("p1", "Cafe North", 1100, jaipur.Lat+0.01, jaipur.Lng, "Cafe"),
	}}, nil)
	svc := newTestService(provider, nil)

	resp, err := svc.PlanDay(context.Background(), types.PlanDayRequest{Tasks: []string{"Get coffee"}}, "")
	require.NoError(t, err)
	assert.Equal(t, 1.1, resp.Summary.DistanceKM)
	assert.Equal(t, 14, resp.Summary.EtaMin)
}

func TestPlanDay_NoTasks(t *testing.T) {
	svc := newTestService(new(foursquaretest.MockProvider), nil)

	_, err := svc.PlanDay(context.Background(), types.PlanDayRequest{Tasks: []string{"  "}}, "")
	assert.ErrorIs(t, err, ErrNoTasks)
}

func TestPlanDay_RecordsHistoryForSignedInUsers(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	recorder := new(MockPlanRecorder)
	userID := uuid.New()
	recorder.On("SavePlan", mock.Anything, userID, mock.MatchedBy(func(stops []types.PlannedTask) bool {
		return len(stops) == 1 && stops[0].Task == "Get coffee"
	})).Return(nil).Once()
	svc := newTestService(provider, recorder)

	_, err := svc.PlanDay(context.Background(), types.PlanDayRequest{Tasks: []string{"Get coffee"}}, userID.String())
	require.NoError(t, err)

	_, err = svc.PlanDay(context.Background(), types.PlanDayRequest{Tasks: []string{"Get coffee"}}, "")
	require.NoError(t, err)

	recorder.On("SavePlan", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))
	_, err = svc.PlanDay(context.Background(), types.PlanDayRequest{Tasks: []string{"Get coffee"}}, uuid.NewString())
	assert.NoError(t, err, "history failures do not fail the plan")

	recorder.AssertNumberOfCalls(t, "SavePlan", 2)
}

func TestCompleteTask(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	svc := newTestService(provider, nil)
	ctx := context.Background()

	_, err := svc.PlanDay(ctx, types.PlanDayRequest{Tasks: []string{"Get coffee", "Buy groceries"}, UserID: "u1"}, "")
	require.NoError(t, err)

	origin := jaipur
	resp, err := svc.CompleteTask(ctx, types.CompleteTaskRequest{Task: "Get coffee", UserID: "u1", Origin: &origin})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Task 'Get coffee' marked as completed", resp.Message)
	assert.Equal(t, 50.0, resp.SessionSummary.CompletionRate)
	assert.Equal(t, types.TaskCompleted, resp.UpdatedTasks[0].Status)

	_, err = svc.CompleteTask(ctx, types.CompleteTaskRequest{Origin: &origin})
	assert.ErrorIs(t, err, ErrTaskRequired)
	_, err = svc.CompleteTask(ctx, types.CompleteTaskRequest{Task: "Get coffee"})
	assert.ErrorIs(t, err, ErrOriginRequired)
	_, err = svc.CompleteTask(ctx, types.CompleteTaskRequest{Task: "Get coffee", Origin: &origin})
	assert.ErrorIs(t, err, ErrTaskNotFound, "anonymous has no session here")
}

func TestFreePlaces(t *testing.T) {
	at := types.LatLon{Lat: 26.9124, Lon: 75.9231}

	t.Run("search with photos", func(t *testing.T) {
		provider := new(foursquaretest.MockProvider)
		provider.On("Search", mock.Anything, mock.MatchedBy(func(p foursquare.SearchParams) bool {
			return p.Query == "park" && p.Radius == 3000 && *p.LL == at
		})).Return(&types.SearchResponse{Results: []types.Place{{FsqPlaceID: "p1", Name: "Ram Niwas Garden"}}}, nil)
		provider.On("PhotoURLs", mock.Anything, "p1", foursquare.ResultPhotoLimit).Return([]string{"https://img/1"})

		resp := newTestService(provider, nil).FreePlaces(context.Background(), at)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, []string{"https://img/1"}, resp.Results[0].Photos)
	})

	t.Run("demo data on failure", func(t *testing.T) {
		provider := new(foursquaretest.MockProvider)
		provider.On("Search", mock.Anything, mock.Anything).Return(nil, foursquare.ErrNotConfigured)

		resp := newTestService(provider, nil).FreePlaces(context.Background(), at)
		require.Len(t, resp.Results, 3)
		assert.Equal(t, "demo-park-1", resp.Results[0].FsqPlaceID)
		assert.InDelta(t, at.Lat+0.001, resp.Results[0].Latitude, 1e-9)
		assert.Equal(t, "Walking Trail", resp.Results[2].PrimaryCategory(""))
	})
}

func TestMeetFriend(t *testing.T) {
	user := types.LatLon{Lat: 26.9124, Lon: 75.7873}
	friend := types.LatLon{Lat: 26.9154, Lon: 75.7903}
	mid := types.LatLon{Lat: (user.Lat + friend.Lat) / 2, Lon: (user.Lon + friend.Lon) / 2}

	t.Run("radius shrinks and far places are dropped", func(t *testing.T) {
		provider := new(foursquaretest.MockProvider)
		provider.On("Search", mock.Anything, mock.MatchedBy(func(p foursquare.SearchParams) bool {
			// friends are ~450 m apart, so 80% of that beats both 1500 and 2000
			return p.Query == "cafe" && p.Radius > 300 && p.Radius < 400
		})).Return(&types.SearchResponse{Results: []types.Place{
			place("mid", "Midway Cafe", 100, mid.Lat, mid.Lon, "Cafe"),
			place("far", "Far Cafe", 5000, 26.95, 75.83, "Cafe"),
			{FsqPlaceID: "nocoords", Name: "Unknown Cafe"},
		}}, nil)

		resp := newTestService(provider, nil).MeetFriend(context.Background(), types.MeetFriendRequest{
			User: &user, Friend: &friend, Activity: "cafe",
		})
		assert.InDelta(t, mid.Lat, resp.Midpoint.Lat, 1e-9)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "mid", resp.Results[0].FsqPlaceID)
	})

	t.Run("all results when none are between", func(t *testing.T) {
		provider := new(foursquaretest.MockProvider)
		provider.On("Search", mock.Anything, mock.Anything).Return(&types.SearchResponse{Results: []types.Place{
			place("far", "Far Cafe", 5000, 26.95, 75.83, "Cafe"),
		}}, nil)

		resp := newTestService(provider, nil).MeetFriend(context.Background(), types.MeetFriendRequest{})
		require.Len(t, resp.Results, 1)
		assert.InDelta(t, mid.Lon, resp.Midpoint.Lon, 1e-9, "defaults to the Jaipur pair")
	})

	t.Run("demo data on failure", func(t *testing.T) {
		provider := new(foursquaretest.MockProvider)
		provider.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("down"))

		resp := newTestService(provider, nil).MeetFriend(context.Background(), types.MeetFriendRequest{User: &user, Friend: &friend})
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "Midpoint Café", resp.Results[0].Name)
	})
}

func TestExplorer(t *testing.T) {
	at := types.LatLon{Lat: 26.9124, Lon: 75.9231}

	t.Run("merges, deduplicates and sorts", func(t *testing.T) {
		provider := new(foursquaretest.MockProvider)
		provider.On("Search", mock.Anything, foursquaretest.SearchFor("")).Return(&types.SearchResponse{Results: []types.Place{
			{FsqPlaceID: "a", Name: "A", Distance: 900},
			{FsqPlaceID: "", Name: "No id", Distance: 10},
		}}, nil)
		provider.On("Search", mock.Anything, foursquaretest.SearchFor("restaurant")).Return(&types.SearchResponse{Results: []types.Place{
			{FsqPlaceID: "b", Name: "B", Distance: 300},
			{FsqPlaceID: "a", Name: "A again", Distance: 900},
		}}, nil)
		provider.On("Search", mock.Anything, foursquaretest.SearchFor("park")).Return(&types.SearchResponse{Results: []types.Place{
			{FsqPlaceID: "c", Name: "C"},
		}}, nil)
		provider.On("Search", mock.Anything, foursquaretest.SearchFor("cafe")).Return(&types.SearchResponse{}, nil)
		provider.On("Search", mock.Anything, foursquaretest.SearchFor("shop")).Return(&types.SearchResponse{Results: []types.Place{
			{FsqPlaceID: "d", Name: "D", Distance: 50},
		}}, nil)
		provider.On("PhotoURLs", mock.Anything, mock.Anything, foursquare.ResultPhotoLimit).Return([]string{})

		resp := newTestService(provider, nil).Explorer(context.Background(), at, 0)
		ids := make([]string, len(resp.Results))
		for i, p := range resp.Results {
			ids[i] = p.FsqPlaceID
		}
		assert.Equal(t, []string{"d", "b", "a", "c"}, ids)
		assert.Equal(t, "A", resp.Results[2].Name, "first occurrence wins")
		provider.AssertNumberOfCalls(t, "PhotoURLs", 4)
		provider.AssertCalled(t, "Search", mock.Anything, mock.MatchedBy(func(p foursquare.SearchParams) bool {
			return p.Radius == DefaultExplorerRadius
		}))
	})

	t.Run("demo data when any search fails", func(t *testing.T) {
		provider := new(foursquaretest.MockProvider)
		provider.On("Search", mock.Anything, foursquaretest.SearchFor("park")).Return(nil, errors.New("down"))
		provider.On("Search", mock.Anything, mock.Anything).Return(&types.SearchResponse{}, nil)

		resp := newTestService(provider, nil).Explorer(context.Background(), at, 5000)
		require.Len(t, resp.Results, 5)
		assert.Equal(t, "City Palace", resp.Results[0].Name)
		assert.Equal(t, "demo-cafe-1", resp.Results[4].FsqPlaceID)
	})
}
