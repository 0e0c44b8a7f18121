package foursquare

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dark-devil9/UrNav/internal/types"
)

const (
	ResultPhotoLimit   = 3
	photoFetchParallel = 5
)

// AttachPhotos fills Photos on every place that has an id, a few at a time.
// Places without an id, or whose lookup fails, get an empty list.
func AttachPhotos(ctx context.Context, p Provider, places []types.Place) {
	var g errgroup.Group
	g.SetLimit(photoFetchParallel)
	for i := range places {
		if places[i].FsqPlaceID == "" {
			places[i].Photos = []string{}
			continue
		}
		g.Go(func() error {
			places[i].Photos = p.PhotoURLs(ctx, places[i].FsqPlaceID, ResultPhotoLimit)
			return nil
		})
	}
	_ = g.Wait()
}
