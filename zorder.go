package osm

// ZOrderSQL is the stock expression the lines layer uses for its z_order
// computed attribute. Registering an Integer computed attribute with
// exactly this text takes a fast path that scores the feature directly
// instead of going through the expression engine.
const ZOrderSQL = "SELECT (CASE [highway] WHEN 'minor' THEN 3 WHEN 'road' THEN 3 " +
	"WHEN 'unclassified' THEN 3 WHEN 'residential' THEN 3 WHEN " +
	"'tertiary_link' THEN 4 WHEN 'tertiary' THEN 4 WHEN 'secondary_link' " +
	"THEN 6 WHEN 'secondary' THEN 6 WHEN 'primary_link' THEN 7 WHEN " +
	"'primary' THEN 7 WHEN 'trunk_link' THEN 8 WHEN 'trunk' THEN 8 " +
	"WHEN 'motorway_link' THEN 9 WHEN 'motorway' THEN 9 ELSE 0 END) + " +
	"(CASE WHEN [bridge] IN ('yes', 'true', '1') THEN 10 ELSE 0 END) + " +
	"(CASE WHEN [tunnel] IN ('yes', 'true', '1') THEN -10 ELSE 0 END) + " +
	"(CASE WHEN [railway] IS NOT NULL THEN 5 ELSE 0 END) + " +
	"(CASE WHEN [layer] IS NOT NULL THEN 10 * CAST([layer] AS INTEGER) ELSE 0 END)"

// computeZOrder scores a feature the way ZOrderSQL does. binds holds the
// five references of the expression in order: highway, bridge, tunnel,
// railway, layer.
func computeZOrder(f *Feature, tags []Tag, binds []bindRef) int {
	z := 0
	if v, ok := bindValue(f, tags, binds[0]); ok {
		switch v {
		case "minor", "road", "unclassified", "residential":
			z += 3
		case "tertiary_link", "tertiary":
			z += 4
		case "secondary_link", "secondary":
			z += 6
		case "primary_link", "primary":
			z += 7
		case "trunk_link", "trunk":
			z += 8
		case "motorway_link", "motorway":
			z += 9
		}
	}
	if v, ok := bindValue(f, tags, binds[1]); ok {
		if v == "yes" || v == "true" || v == "1" {
			z += 10
		}
	}
	if v, ok := bindValue(f, tags, binds[2]); ok {
		if v == "yes" || v == "true" || v == "1" {
			z -= 10
		}
	}
	if _, ok := bindValue(f, tags, binds[3]); ok {
		z += 5
	}
	if v, ok := bindValue(f, tags, binds[4]); ok {
		z += 10 * parseCInt(v)
	}
	return z
}
