package card

// Default display options, matching the card's out-of-the-box appearance.
const (
	DefaultTitle       = "Plex Search"
	DefaultColumns     = 2
	DefaultTheme       = "glassmorphic"
	DefaultSearchLimit = 6
)

// Config describes which entities the card watches and how results are
// displayed. It is immutable after construction: Validate is called once
// when the card is built and the card never writes back into it.
type Config struct {
	// StatusEntity is the search status sensor. Required.
	StatusEntity string `yaml:"status_entity"`

	// ResultEntities are the result slot sensors, in display order.
	// The arity is fixed by configuration (typically 6 slots).
	ResultEntities []string `yaml:"result_entities,omitempty"`

	// PlayerEntities are the selectable playback targets, in display order.
	PlayerEntities []string `yaml:"player_entities,omitempty"`

	// Display options
	Title          string `yaml:"title,omitempty"`
	ShowThumbnails *bool  `yaml:"show_thumbnails,omitempty"`
	Columns        int    `yaml:"columns,omitempty"`
	Theme          string `yaml:"theme,omitempty"`

	// Search options
	SearchLimit int      `yaml:"search_limit,omitempty"`
	Libraries   []string `yaml:"libraries,omitempty"`
}

// Validate checks required fields and fills in defaults. Construction of
// the card fails outright on error; there is no partially-configured card.
func (c *Config) Validate() error {
	if c.StatusEntity == "" {
		return &ConfigurationError{Field: "status_entity", Reason: "required"}
	}

	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.ShowThumbnails == nil {
		v := true
		c.ShowThumbnails = &v
	}
	if c.Columns <= 0 {
		c.Columns = DefaultColumns
	}
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = DefaultSearchLimit
	}

	return nil
}

// WatchedEntities returns the full ordered set of entity identifiers whose
// changes are relevant to the card: the status entity followed by every
// configured result slot. Player entities are deliberately not watched;
// their state churns constantly (position updates, volume) and none of it
// affects what the card renders.
func (c *Config) WatchedEntities() []string {
	watched := make([]string, 0, 1+len(c.ResultEntities))
	watched = append(watched, c.StatusEntity)
	watched = append(watched, c.ResultEntities...)
	return watched
}

// ThumbnailsEnabled reports the effective show_thumbnails option.
func (c *Config) ThumbnailsEnabled() bool {
	return c.ShowThumbnails == nil || *c.ShowThumbnails
}
