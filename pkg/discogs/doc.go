// Package discogs is a read-only client for the Discogs database API.
//
// A Client builds request paths for the artist, release, master, label,
// image and search resources, sends a single GET per call through an
// injectable httpclient.Client and normalizes the response into a *Result
// or an *Error:
//
//	c := discogs.New(discogs.Config{AccessKey: key, AccessSecret: secret})
//	res, err := c.ArtistReleases(ctx, "87016", &discogs.Pagination{Page: 2, PerPage: 30})
//	if err != nil {
//		var apiErr *discogs.Error
//		if errors.As(err, &apiErr) && errors.Is(err, discogs.ErrStatus) {
//			// apiErr.StatusCode is one of 401, 403, 404, 405, 422, 500
//		}
//		return err
//	}
//	var page discogs.ReleasesPage
//	err = res.Decode(&page)
//
// Rate-limit headers are surfaced on every Result and never acted upon.
// Nothing is cached or retried.
package discogs
