package config

// Overrides carries values set at runtime via CLI flags.
// They are applied on top of the file and are never persisted.
type Overrides struct {
	Host          string
	Port          int
	Debug         bool
	LLMEndpoint   string
	LLMDisabled   bool
	StorageDriver string
	StorageDSN    string
	CatalogFile   string
}

// Apply copies every non-zero override into c.
func (c *Config) Apply(o Overrides) {
	if o.Host != "" {
		c.Server.Host = o.Host
	}
	if o.Port != 0 {
		c.Server.Port = o.Port
	}
	if o.Debug {
		c.Server.Debug = true
	}
	if o.LLMEndpoint != "" {
		c.LLM.Endpoint = o.LLMEndpoint
	}
	if o.LLMDisabled {
		c.LLM.Disabled = true
	}
	if o.StorageDriver != "" {
		c.Storage.Driver = o.StorageDriver
	}
	if o.StorageDSN != "" {
		c.Storage.DSN = o.StorageDSN
	}
	if o.CatalogFile != "" {
		c.Catalog.File = o.CatalogFile
	}
}
