package discogs

// Typed views of the JSON resources. Decode a Result into them with
// Result.Decode; fields the API adds later are ignored.

type PageInfo struct {
	Page    int      `json:"page"`
	Pages   int      `json:"pages"`
	PerPage int      `json:"per_page"`
	Items   int      `json:"items"`
	URLs    PageURLs `json:"urls"`
}

type PageURLs struct {
	First string `json:"first,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last,omitempty"`
}

type ImageRef struct {
	Type        string `json:"type"`
	URI         string `json:"uri"`
	URI150      string `json:"uri150"`
	ResourceURL string `json:"resource_url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type ArtistRef struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Anv         string `json:"anv,omitempty"`
	Join        string `json:"join,omitempty"`
	Role        string `json:"role,omitempty"`
	Active      bool   `json:"active,omitempty"`
	ResourceURL string `json:"resource_url"`
}

type LabelRef struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Catno       string `json:"catno,omitempty"`
	ResourceURL string `json:"resource_url"`
}

type Track struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Type     string `json:"type_,omitempty"`
}

type Format struct {
	Name         string   `json:"name"`
	Qty          string   `json:"qty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

type Artist struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	RealName       string      `json:"realname,omitempty"`
	Profile        string      `json:"profile,omitempty"`
	URI            string      `json:"uri"`
	ResourceURL    string      `json:"resource_url"`
	ReleasesURL    string      `json:"releases_url"`
	URLs           []string    `json:"urls,omitempty"`
	NameVariations []string    `json:"namevariations,omitempty"`
	Members        []ArtistRef `json:"members,omitempty"`
	Groups         []ArtistRef `json:"groups,omitempty"`
	Images         []ImageRef  `json:"images,omitempty"`
	DataQuality    string      `json:"data_quality,omitempty"`
}

type Release struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Year        int         `json:"year"`
	Country     string      `json:"country,omitempty"`
	Released    string      `json:"released,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Status      string      `json:"status,omitempty"`
	MasterID    int         `json:"master_id,omitempty"`
	Genres      []string    `json:"genres,omitempty"`
	Styles      []string    `json:"styles,omitempty"`
	Artists     []ArtistRef `json:"artists,omitempty"`
	Labels      []LabelRef  `json:"labels,omitempty"`
	Formats     []Format    `json:"formats,omitempty"`
	Tracklist   []Track     `json:"tracklist,omitempty"`
	Images      []ImageRef  `json:"images,omitempty"`
	URI         string      `json:"uri"`
	ResourceURL string      `json:"resource_url"`
	DataQuality string      `json:"data_quality,omitempty"`
}

type Master struct {
	ID             int         `json:"id"`
	Title          string      `json:"title"`
	Year           int         `json:"year"`
	MainRelease    int         `json:"main_release"`
	MainReleaseURL string      `json:"main_release_url"`
	VersionsURL    string      `json:"versions_url"`
	Genres         []string    `json:"genres,omitempty"`
	Styles         []string    `json:"styles,omitempty"`
	Artists        []ArtistRef `json:"artists,omitempty"`
	Tracklist      []Track     `json:"tracklist,omitempty"`
	Images         []ImageRef  `json:"images,omitempty"`
	URI            string      `json:"uri"`
	ResourceURL    string      `json:"resource_url"`
}

type Label struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Profile     string     `json:"profile,omitempty"`
	ContactInfo string     `json:"contact_info,omitempty"`
	ParentLabel *LabelRef  `json:"parent_label,omitempty"`
	Sublabels   []LabelRef `json:"sublabels,omitempty"`
	URLs        []string   `json:"urls,omitempty"`
	Images      []ImageRef `json:"images,omitempty"`
	ReleasesURL string     `json:"releases_url"`
	URI         string     `json:"uri"`
	ResourceURL string     `json:"resource_url"`
}

// ReleaseSummary is an entry of the artist, label and master list resources.
type ReleaseSummary struct {
	ID          int    `json:"id"`
	Type        string `json:"type,omitempty"`
	Title       string `json:"title"`
	Artist      string `json:"artist,omitempty"`
	Role        string `json:"role,omitempty"`
	Year        int    `json:"year,omitempty"`
	Released    string `json:"released,omitempty"`
	Label       string `json:"label,omitempty"`
	Catno       string `json:"catno,omitempty"`
	Format      string `json:"format,omitempty"`
	Country     string `json:"country,omitempty"`
	Status      string `json:"status,omitempty"`
	Thumb       string `json:"thumb,omitempty"`
	MainRelease int    `json:"main_release,omitempty"`
	ResourceURL string `json:"resource_url"`
}

// ReleasesPage decodes artist releases, label releases and master versions.
type ReleasesPage struct {
	Pagination PageInfo         `json:"pagination"`
	Releases   []ReleaseSummary `json:"releases,omitempty"`
	Versions   []ReleaseSummary `json:"versions,omitempty"`
}

// Items returns the entries regardless of which list key the resource uses.
func (p ReleasesPage) Items() []ReleaseSummary {
	if len(p.Versions) > 0 {
		return p.Versions
	}
	return p.Releases
}

type SearchResult struct {
	ID          int      `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Year        string   `json:"year,omitempty"`
	Country     string   `json:"country,omitempty"`
	Catno       string   `json:"catno,omitempty"`
	Genre       []string `json:"genre,omitempty"`
	Style       []string `json:"style,omitempty"`
	Format      []string `json:"format,omitempty"`
	Label       []string `json:"label,omitempty"`
	Thumb       string   `json:"thumb,omitempty"`
	CoverImage  string   `json:"cover_image,omitempty"`
	URI         string   `json:"uri"`
	ResourceURL string   `json:"resource_url"`
}

type SearchResults struct {
	Pagination PageInfo       `json:"pagination"`
	Results    []SearchResult `json:"results"`
}
