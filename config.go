package osm

import (
	"io"

	"github.com/BurntSushi/toml"
)

// Config describes a data source: the global toggles and one entry per
// layer. The zero value is usable but empty; DefaultConfig returns the
// stock five layer setup.
type Config struct {
	// AttributeNameLaundering replaces ':' with '_' in visible field
	// names. Tag matching always uses the raw name.
	AttributeNameLaundering bool `toml:"attribute_name_laundering"`

	// TagsFormat selects the blob serialization, "hstore" or "json".
	// Empty means hstore.
	TagsFormat string `toml:"tags_format"`

	// InterleavedReading makes all layers share a single forward pass
	// over the stream instead of replaying it per layer.
	InterleavedReading bool `toml:"interleaved_reading"`

	Layers []LayerConfig `toml:"layers"`
}

// LayerConfig describes one layer: which id and metadata fields it
// carries, its declared attributes, its key sets, and its computed
// attributes.
type LayerConfig struct {
	Name string `toml:"name"`

	OSMId        bool `toml:"osm_id"`
	OSMWayId     bool `toml:"osm_way_id"`
	OSMVersion   bool `toml:"osm_version"`
	OSMTimestamp bool `toml:"osm_timestamp"`
	OSMUid       bool `toml:"osm_uid"`
	OSMUser      bool `toml:"osm_user"`
	OSMChangeset bool `toml:"osm_changeset"`

	// Attributes declare one String field per listed tag key, in order.
	Attributes []string `toml:"attributes"`

	// Ignore keys are dropped from blob serialization. A trailing ':'
	// drops the whole namespace.
	Ignore []string `toml:"ignore"`

	// Insignificant keys carry no significance of their own; parsers
	// consult the set when deciding what to emit.
	Insignificant []string `toml:"insignificant"`

	OtherTags bool `toml:"other_tags"`
	AllTags   bool `toml:"all_tags"`

	ComputedAttributes []ComputedAttributeConfig `toml:"computed_attributes"`
}

// ComputedAttributeConfig declares one computed attribute: the receiving
// field's name and type and the SQL expression producing its value.
type ComputedAttributeConfig struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
	SQL  string `toml:"sql"`
}

// Validate checks the config for unknown format or type names, missing
// or duplicate layer names.
func (c Config) Validate() error {
	if c.TagsFormat != "" {
		if _, err := ParseTagsFormat(c.TagsFormat); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(c.Layers))
	for _, lc := range c.Layers {
		if lc.Name == "" {
			return ErrMissingLayerName
		}
		if _, ok := seen[lc.Name]; ok {
			return ErrDuplicateLayer{Layer: lc.Name}
		}
		seen[lc.Name] = struct{}{}
		for _, ca := range lc.ComputedAttributes {
			if _, err := ParseFieldType(ca.Type); err != nil {
				return ErrComputedAttribute{Layer: lc.Name, Name: ca.Name, Err: err}
			}
		}
	}
	return nil
}

// LoadConfig reads a TOML configuration file. Keys left out keep their
// defaults: laundering on, hstore tags, sequential reading.
func LoadConfig(path string) (Config, error) {
	cfg := Config{AttributeNameLaundering: true}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ParseConfig reads a TOML configuration from r, with the same defaults
// as LoadConfig.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := Config{AttributeNameLaundering: true}
	if _, err := toml.DecodeReader(r, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// stockIgnoredKeys lists the keys the stock configuration keeps out of
// tag blobs and treats as insignificant.
var stockIgnoredKeys = []string{
	"created_by", "converted_by", "source", "time", "ele", "attribution",
	"fixme", "FIXME", "note", "todo", "openGeoDB:",
}

func ignoredKeys() []string {
	return append([]string(nil), stockIgnoredKeys...)
}

// DefaultConfig returns the stock configuration: points, lines,
// multilinestrings, multipolygons and other_relations, each carrying an
// other_tags blob, with the classic z_order computed attribute on the
// lines layer.
func DefaultConfig() Config {
	return Config{
		AttributeNameLaundering: true,
		TagsFormat:              "hstore",
		Layers: []LayerConfig{
			{
				Name:          "points",
				OSMId:         true,
				Attributes:    []string{"name", "barrier", "highway", "ref", "address", "is_in", "place", "man_made"},
				Ignore:        ignoredKeys(),
				Insignificant: ignoredKeys(),
				OtherTags:     true,
			},
			{
				Name:          "lines",
				OSMId:         true,
				Attributes:    []string{"name", "highway", "waterway", "aerialway", "barrier", "man_made", "railway"},
				Ignore:        ignoredKeys(),
				Insignificant: ignoredKeys(),
				OtherTags:     true,
				ComputedAttributes: []ComputedAttributeConfig{
					{Name: "z_order", Type: "Integer", SQL: ZOrderSQL},
				},
			},
			{
				Name:          "multilinestrings",
				OSMId:         true,
				Attributes:    []string{"name", "type"},
				Ignore:        ignoredKeys(),
				Insignificant: ignoredKeys(),
				OtherTags:     true,
			},
			{
				Name:     "multipolygons",
				OSMId:    true,
				OSMWayId: true,
				Attributes: []string{
					"name", "type", "aeroway", "amenity", "admin_level",
					"barrier", "boundary", "building", "craft", "geological",
					"historic", "land_area", "landuse", "leisure", "man_made",
					"military", "natural", "office", "place", "shop", "sport",
					"tourism",
				},
				Ignore:        ignoredKeys(),
				Insignificant: ignoredKeys(),
				OtherTags:     true,
			},
			{
				Name:          "other_relations",
				OSMId:         true,
				Attributes:    []string{"name", "type"},
				Ignore:        ignoredKeys(),
				Insignificant: ignoredKeys(),
				OtherTags:     true,
			},
		},
	}
}
