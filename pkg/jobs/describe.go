package jobs

import (
	"strconv"

	"github.com/samvad-hq/discogs-harvester/pkg/discogs"
)

// describe decodes a JSON result into the typed model for kind and returns
// the headline fields downstream consumers route on. A body that does not fit
// the model yields nil; the raw payload still travels with the record.
func describe(kind string, res *discogs.Result) map[string]string {
	if res == nil || res.IsImage() {
		return nil
	}

	meta := map[string]string{}
	switch kind {
	case KindArtist:
		var a discogs.Artist
		if res.Decode(&a) != nil {
			return nil
		}
		putInt(meta, "id", a.ID)
		put(meta, "name", a.Name)
	case KindRelease:
		var r discogs.Release
		if res.Decode(&r) != nil {
			return nil
		}
		putInt(meta, "id", r.ID)
		put(meta, "title", r.Title)
		putInt(meta, "year", r.Year)
		put(meta, "country", r.Country)
	case KindMaster:
		var m discogs.Master
		if res.Decode(&m) != nil {
			return nil
		}
		putInt(meta, "id", m.ID)
		put(meta, "title", m.Title)
		putInt(meta, "year", m.Year)
	case KindLabel:
		var l discogs.Label
		if res.Decode(&l) != nil {
			return nil
		}
		putInt(meta, "id", l.ID)
		put(meta, "name", l.Name)
	case KindArtistReleases, KindMasterVersions, KindLabelReleases:
		var p discogs.ReleasesPage
		if res.Decode(&p) != nil {
			return nil
		}
		putPage(meta, p.Pagination, len(p.Items()))
	case KindSearch:
		var s discogs.SearchResults
		if res.Decode(&s) != nil {
			return nil
		}
		putPage(meta, s.Pagination, len(s.Results))
	default:
		return nil
	}

	if len(meta) == 0 {
		return nil
	}
	return meta
}

func putPage(meta map[string]string, p discogs.PageInfo, count int) {
	putInt(meta, "page", p.Page)
	putInt(meta, "pages", p.Pages)
	putInt(meta, "items", p.Items)
	meta["count"] = strconv.Itoa(count)
}

func put(meta map[string]string, key, value string) {
	if value != "" {
		meta[key] = value
	}
}

func putInt(meta map[string]string, key string, value int) {
	if value != 0 {
		meta[key] = strconv.Itoa(value)
	}
}
