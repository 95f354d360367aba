package numbering

// Catalog maps a 4-digit part-number prefix to the boilerplate
// description used when a synchronized part number is entered on a row
// whose description is still blank.  It is injected into the edit service
// so deployments can override it from config.
type Catalog map[string]string

// DefaultCatalog returns the built-in prefix descriptions.
func DefaultCatalog() Catalog {
	return Catalog{
		"0300": "VACUUM PUMP, ROTARY VANE",
		"2202": "BASEPLATE, PUMP MOUNTING",
		"2728": "MANIFOLD, INLET",
		"2730": "SEPARATOR, OIL MIST",
		"3620": "TANK, AIR RECEIVER",
		"6521": "PANEL, CONTROL",
		"6875": "VALVE, CHECK",
	}
}

// Describe looks up the description template for a part number of the
// synchronized form.  The part must be at least 13 characters with the
// dash right after the 4-digit prefix, matching what the autofill rules
// produce.
func (c Catalog) Describe(part string) (string, bool) {
	if len(part) < 13 || part[4] != '-' {
		return "", false
	}
	d, ok := c[part[:4]]
	return d, ok
}

// Merge overlays entries onto a copy of the catalog and returns it.
func (c Catalog) Merge(overrides map[string]string) Catalog {
	out := make(Catalog, len(c)+len(overrides))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
