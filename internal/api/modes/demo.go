package modes

import "github.com/dark-devil9/UrNav/internal/types"

const (
	photoPark       = "https://images.unsplash.com/photo-1441974231531-c6227db76b6e?w=400&h=300&fit=crop"
	photoGarden     = "https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=400&h=300&fit=crop"
	photoRiverside  = "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=400&h=300&fit=crop"
	photoCafe       = "https://images.unsplash.com/photo-1554118811-1e0d58224f24?w=400&h=300&fit=crop"
	photoPalace     = "https://images.unsplash.com/photo-1566073771259-6a8506099945?w=400&h=300&fit=crop"
	photoRestaurant = "https://images.unsplash.com/photo-1414235077428-338989a2e8c0?w=400&h=300&fit=crop"
	photoLocalCafe  = "https://images.unsplash.com/photo-1501339847302-ac426a4a7cbb?w=400&h=300&fit=crop"
)

func demoPlace(id, name, category string, distance int, rating float64, lat, lon float64, photo string) types.Place {
	return types.Place{
		FsqPlaceID: id,
		Name:       name,
		Categories: []types.Category{{Name: category}},
		Distance:   distance,
		Rating:     rating,
		Latitude:   lat,
		Longitude:  lon,
		Photos:     []string{photo},
	}
}

func demoFreePlaces(at types.LatLon) []types.Place {
	return []types.Place{
		demoPlace("demo-park-1", "Central Park", "Park", 400, 4.3, at.Lat+0.001, at.Lon+0.001, photoPark),
		demoPlace("demo-park-2", "Garden Square", "Garden", 600, 4.1, at.Lat-0.001, at.Lon-0.001, photoGarden),
		demoPlace("demo-park-3", "Riverside Walk", "Walking Trail", 800, 4.5, at.Lat+0.002, at.Lon+0.002, photoRiverside),
	}
}

// demoMeetPlaces carry no coordinates.
func demoMeetPlaces() []types.Place {
	return []types.Place{
		demoPlace("demo-mf-1", "Midpoint Café", "Cafe", 600, 4.4, 0, 0, photoCafe),
		demoPlace("demo-mf-2", "City Park Meetup Spot", "Park", 900, 4.5, 0, 0, photoPark),
	}
}

func demoExplorerPlaces(at types.LatLon) []types.Place {
	return []types.Place{
		demoPlace("demo-attraction-1", "City Palace", "Historic Site", 1200, 4.6, at.Lat+0.001, at.Lon+0.001, photoPalace),
		demoPlace("demo-attraction-2", "Hawa Mahal", "Palace", 800, 4.4, at.Lat-0.001, at.Lon-0.001, photoPalace),
		demoPlace("demo-food-1", "Local Restaurant", "Restaurant", 500, 4.2, at.Lat+0.002, at.Lon+0.002, photoRestaurant),
		demoPlace("demo-park-1", "Central Park", "Park", 400, 4.3, at.Lat-0.002, at.Lon-0.002, photoPark),
		demoPlace("demo-cafe-1", "Local Café", "Cafe", 600, 4.1, at.Lat+0.003, at.Lon+0.003, photoLocalCafe),
	}
}
